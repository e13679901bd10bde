package deploy_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airlift-sh/airlift/internal/deploy"
)

func TestResurrectEntry(t *testing.T) {
	t.Parallel()

	entry := deploy.ResurrectEntry("/home/deploy/.pm2-configs/exporter")
	assert.Equal(t, "@reboot PM2_HOME=/home/deploy/.pm2-configs/exporter pm2 resurrect", entry)
}

func TestMergeCrontab(t *testing.T) {
	t.Parallel()

	ns := "/home/deploy/.pm2-configs/exporter"

	t.Run("empty crontab gets one entry", func(t *testing.T) {
		t.Parallel()

		merged := deploy.MergeCrontab("", ns)
		assert.Equal(t, deploy.ResurrectEntry(ns)+"\n", merged)
	})

	t.Run("unrelated lines survive", func(t *testing.T) {
		t.Parallel()

		existing := "0 3 * * * /usr/local/bin/backup.sh\n"
		merged := deploy.MergeCrontab(existing, ns)
		assert.Contains(t, merged, "backup.sh")
		assert.Contains(t, merged, deploy.ResurrectEntry(ns))
	})

	t.Run("stale entries for the same namespace are replaced", func(t *testing.T) {
		t.Parallel()

		existing := "@reboot PM2_HOME=" + ns + " pm2 resurrect\n" +
			"@reboot PM2_HOME=" + ns + " pm2 resurrect\n"
		merged := deploy.MergeCrontab(existing, ns)
		assert.Equal(t, 1, strings.Count(merged, ns))
	})

	t.Run("other projects keep their entries", func(t *testing.T) {
		t.Parallel()

		other := "/home/deploy/.pm2-configs/other-app"
		existing := deploy.ResurrectEntry(other) + "\n"
		merged := deploy.MergeCrontab(existing, ns)
		assert.Contains(t, merged, other)
		assert.Contains(t, merged, ns)
	})

	t.Run("prefix-named sibling keeps its entry", func(t *testing.T) {
		t.Parallel()

		sibling := ns + "2"
		existing := deploy.ResurrectEntry(sibling) + "\n"
		merged := deploy.MergeCrontab(existing, ns)
		assert.Contains(t, merged, deploy.ResurrectEntry(sibling))
		assert.Contains(t, merged, deploy.ResurrectEntry(ns))

		// And the reverse: deploying the sibling leaves this project alone.
		merged = deploy.MergeCrontab(deploy.ResurrectEntry(ns)+"\n", sibling)
		assert.Contains(t, merged, deploy.ResurrectEntry(ns))
		assert.Contains(t, merged, deploy.ResurrectEntry(sibling))
	})

	t.Run("idempotent on its own output", func(t *testing.T) {
		t.Parallel()

		once := deploy.MergeCrontab("0 3 * * * backup\n", ns)
		twice := deploy.MergeCrontab(once, ns)
		assert.Equal(t, once, twice)
	})
}

package deploy

import (
	"fmt"
	"strings"
)

// ResurrectEntry builds the @reboot crontab line for a project's pm2
// namespace. The namespace path doubles as the idempotency tag: merges
// filter on it, so two projects on one host never clobber each other's
// entries.
func ResurrectEntry(namespace string) string {
	return fmt.Sprintf("@reboot PM2_HOME=%s pm2 resurrect", namespace)
}

// MergeCrontab returns the crontab content with any previous entries for
// this namespace removed and exactly one fresh entry appended. Running
// it against its own output is a no-op, which is what makes repeated
// deploys leave a single line per project. The namespace is matched as a
// delimited PM2_HOME assignment, not a substring, so a project whose
// namespace is a path-prefix of a sibling's never touches the sibling's
// entry.
func MergeCrontab(existing, namespace string) string {
	tag := "PM2_HOME=" + namespace + " "

	var kept []string
	for _, line := range strings.Split(existing, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, tag) {
			continue
		}
		kept = append(kept, line)
	}

	kept = append(kept, ResurrectEntry(namespace))
	return strings.Join(kept, "\n") + "\n"
}

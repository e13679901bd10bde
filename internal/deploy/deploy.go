package deploy

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
	"github.com/airlift-sh/airlift/internal/validation"
)

// Options configures one deploy run. License is a validated type: an
// Options value cannot exist with an empty credential, which is the
// fail-fast guard the provisioning sequence relies on.
type Options struct {
	Target       Target
	Project      string
	License      validation.LicenseKey
	LicenseEnv   string
	Python       string
	AppScript    string
	Requirements string
	Source       string
}

// Orchestrator runs the provisioning sequence against one target.
type Orchestrator struct {
	opts   Options
	logger *logging.Logger
	dial   Dialer
}

// NewOrchestrator validates options and prepares a run. dial defaults to
// the SSH implementation when nil.
func NewOrchestrator(opts Options, logger *logging.Logger, dial Dialer) (*Orchestrator, error) {
	if opts.Project == "" {
		return nil, dserrors.ConfigError{
			Field:      "project",
			Message:    "project name is required",
			Suggestion: "Set deploy.project in airlift.yaml",
		}
	}
	if strings.ContainsAny(opts.Project, "/ \t") {
		return nil, dserrors.ConfigError{
			Field:      "project",
			Value:      opts.Project,
			Message:    "project name must be a single path segment",
			Suggestion: "Use letters, digits, dots, dashes and underscores only",
		}
	}
	if dial == nil {
		dial = DialSSH
	}
	return &Orchestrator{opts: opts, logger: logger, dial: dial}, nil
}

type step struct {
	name string
	fn   func(ctx context.Context, r Runner) error
}

// Deploy executes the fixed sequence: stage, transfer, directories,
// descriptor, launcher, virtualenv, pm2, cron. Strictly sequential,
// aborts on the first failure, bounded by the caller's context deadline.
// A failure leaves the host in the state the last successful step
// produced; operators re-trigger rather than rely on rollback.
func (o *Orchestrator) Deploy(ctx context.Context) error {
	files, err := StageTree(o.opts.Source)
	if err != nil {
		return dserrors.UserError{
			Message:    "Failed to stage source tree " + o.opts.Source,
			Suggestion: "Check deploy.source points at the project checkout",
			Err:        err,
		}
	}
	o.logger.Debug("staged %d files from %s", len(files), o.opts.Source)

	runner, err := o.dial(ctx, o.opts.Target)
	if err != nil {
		return err
	}
	defer runner.Close()

	home := runner.Home()
	projectDir := path.Join(home, o.opts.Project)
	namespace := path.Join(home, ".pm2-configs", o.opts.Project)

	steps := []step{
		{"create directories", func(ctx context.Context, r Runner) error {
			return o.runRemote(ctx, r, fmt.Sprintf("mkdir -p %s %s", shq(projectDir), shq(namespace)))
		}},
		{"transfer source tree", func(ctx context.Context, r Runner) error {
			return o.uploadTree(ctx, r, files, projectDir)
		}},
		{"write process descriptor", func(ctx context.Context, r Runner) error {
			return o.uploadDescriptor(ctx, r, projectDir)
		}},
		{"write launcher script", func(ctx context.Context, r Runner) error {
			return o.uploadLauncher(ctx, r, projectDir)
		}},
		{"provision virtualenv", func(ctx context.Context, r Runner) error {
			return o.runRemote(ctx, r, fmt.Sprintf(
				"cd %s && rm -rf venv && %s -m venv venv && ./venv/bin/pip install -r %s",
				shq(projectDir), o.opts.Python, shq(o.opts.Requirements)))
		}},
		{"restart process manager", func(ctx context.Context, r Runner) error {
			return o.restartPM2(ctx, r, projectDir, namespace)
		}},
		{"register persistence hook", func(ctx context.Context, r Runner) error {
			return o.updateCrontab(ctx, r, namespace)
		}},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return dserrors.UserError{
				Message:    "Deploy timed out during '" + s.name + "'",
				Suggestion: "Increase --timeout or check remote host responsiveness",
				Err:        err,
			}
		}
		o.logger.Debug("step: %s", s.name)
		if err := s.fn(ctx, runner); err != nil {
			o.logger.Error("step '%s' failed", s.name)
			return err
		}
		o.logger.Info("%s", s.name)
	}

	o.logger.Info("deployed %s to %s@%s", o.opts.Project, o.opts.Target.User, o.opts.Target.Host)
	return nil
}

func (o *Orchestrator) uploadTree(ctx context.Context, r Runner, files []StagedFile, projectDir string) error {
	for _, f := range files {
		local, err := os.Open(f.AbsPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.AbsPath, err)
		}
		err = r.Upload(ctx, local, path.Join(projectDir, f.RelPath), f.Mode)
		local.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) descriptorParams(projectDir string) DescriptorParams {
	return DescriptorParams{
		Project:    o.opts.Project,
		ProjectDir: projectDir,
		LicenseEnv: o.opts.LicenseEnv,
		LicenseKey: o.opts.License.Reveal(),
		Python:     o.opts.Python,
		AppScript:  o.opts.AppScript,
		ConfigPath: path.Join(projectDir, o.opts.Project+".yaml"),
	}
}

func (o *Orchestrator) uploadDescriptor(ctx context.Context, r Runner, projectDir string) error {
	content, err := RenderEcosystem(o.descriptorParams(projectDir))
	if err != nil {
		return err
	}
	return r.Upload(ctx, strings.NewReader(string(content)), path.Join(projectDir, "ecosystem.config.js"), 0o600)
}

func (o *Orchestrator) uploadLauncher(ctx context.Context, r Runner, projectDir string) error {
	content, err := RenderStartScript(o.descriptorParams(projectDir))
	if err != nil {
		return err
	}
	return r.Upload(ctx, strings.NewReader(string(content)), path.Join(projectDir, "start.sh"), 0o755)
}

func (o *Orchestrator) restartPM2(ctx context.Context, r Runner, projectDir, namespace string) error {
	// Delete may fail when no prior process exists; that is fine.
	if _, stderr, err := r.Run(ctx, fmt.Sprintf("PM2_HOME=%s pm2 delete %s", shq(namespace), shq(o.opts.Project))); err != nil {
		o.logger.Debug("pm2 delete reported: %s", strings.TrimSpace(string(stderr)))
	}

	if err := o.runRemote(ctx, r, fmt.Sprintf("PM2_HOME=%s pm2 start %s", shq(namespace), shq(path.Join(projectDir, "ecosystem.config.js")))); err != nil {
		return err
	}
	return o.runRemote(ctx, r, fmt.Sprintf("PM2_HOME=%s pm2 save", shq(namespace)))
}

func (o *Orchestrator) updateCrontab(ctx context.Context, r Runner, namespace string) error {
	existing, _, err := r.Run(ctx, "crontab -l 2>/dev/null || true")
	if err != nil {
		return fmt.Errorf("failed to read remote crontab: %w", err)
	}

	merged := MergeCrontab(string(existing), namespace)
	if err := r.RunInput(ctx, "crontab -", strings.NewReader(merged)); err != nil {
		return fmt.Errorf("failed to install remote crontab: %w", err)
	}
	return nil
}

func (o *Orchestrator) runRemote(ctx context.Context, r Runner, cmd string) error {
	_, stderr, err := r.Run(ctx, cmd)
	if err != nil {
		return dserrors.CommandError{
			Command:    cmd,
			Message:    strings.TrimSpace(string(stderr)),
			Suggestion: "Run the command manually over ssh to inspect the remote state",
		}
	}
	return nil
}

// shq single-quotes a remote shell word.
func shq(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package installer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/target"
)

// Executor runs the silent install step for a downloaded artifact.
type Executor struct {
	Runner  Runner
	Strict  bool // fail on a non-success exit code instead of continuing
	Timeout time.Duration
}

// Install performs a non-interactive install of artifact according to
// d.Method and blocks until it finishes.
func (e *Executor) Install(ctx context.Context, d target.Descriptor, artifact string) error {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	switch d.Method {
	case target.MethodArchive:
		logger.Info("%s Extracting %s into %s\n", d.Tag(), artifact, d.BinaryPath)
		if err := ExtractAndInstall(artifact, d.BinaryPath); err != nil {
			return fmt.Errorf("%w: %v", ErrInstallExecution, err)
		}
		return nil

	case target.MethodBinary:
		logger.Info("%s Copying %s to %s\n", d.Tag(), artifact, d.BinaryPath)
		if err := copyFile(artifact, d.BinaryPath, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrInstallExecution, err)
		}
		return nil
	}

	argv, err := silentCommand(d, artifact)
	if err != nil {
		return err
	}
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(argv, " "))
	res := e.Runner.Run(ctx, argv[0], argv[1:]...)
	if res.Ok(d.Accepts) {
		return nil
	}

	if !e.Strict {
		logger.Warn("[WARN] %s installer reported %s, continuing\nOutput: %s\n", d.Name, res.Error(), res.Output)
		return nil
	}
	return fmt.Errorf("%w: %s: %s\nOutput: %s", ErrInstallExecution, argv[0], res.Error(), res.Output)
}

// silentCommand builds the argv that installs artifact without any UI.
func silentCommand(d target.Descriptor, artifact string) ([]string, error) {
	switch d.Method {
	case target.MethodMSI:
		return []string{"msiexec", "/i", artifact, "/qn"}, nil
	case target.MethodExe:
		return append([]string{artifact}, d.SilentArgs...), nil
	case target.MethodPkg:
		return []string{"installer", "-pkg", artifact, "-target", "/"}, nil
	case target.MethodDeb:
		return []string{"dpkg", "-i", artifact}, nil
	case target.MethodRPM:
		return []string{"rpm", "-Uvh", artifact}, nil
	default:
		return nil, fmt.Errorf("%w: unknown install method %q", ErrInstallExecution, d.Method)
	}
}

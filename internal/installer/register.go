package installer

import (
	"context"
	"fmt"
	"time"

	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/target"
)

// Registrar runs the installed binary's service registration subcommand.
type Registrar struct {
	Runner  Runner
	Strict  bool // surface a failed registration instead of assuming success
	Timeout time.Duration
}

// Register registers d as an OS service bound to token. In compat mode the
// result is logged and the step always succeeds.
func (r *Registrar) Register(ctx context.Context, d target.Descriptor, token string) error {
	if token == "" {
		return fmt.Errorf("%w: registration token is empty", ErrInputValidation)
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := d.RegisterCommand(token)
	logger.Debug("[DEBUG] Running command: %s\n", maskToken(argv, token))
	res := r.Runner.Run(ctx, argv[0], argv[1:]...)
	if res.Ok(nil) {
		return nil
	}

	output := maskToken([]string{string(res.Output)}, token)
	if !r.Strict {
		logger.Warn("[WARN] %s registration reported %s, assuming success\nOutput: %s\n", d.Name, res.Error(), output)
		return nil
	}
	return fmt.Errorf("%w: %s: %s\nOutput: %s", ErrRegistration, d.Name, res.Error(), output)
}

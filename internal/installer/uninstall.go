package installer

import (
	"context"
	"strings"
	"time"

	"agent-bootstrap/internal/logger"
)

// Uninstaller removes a prior installation before a fresh install.
type Uninstaller struct {
	Runner      Runner
	Timeout     time.Duration
	SettleDelay time.Duration // wait for the service manager to release the old service
}

// Uninstall runs the record's uninstall command. Failures are logged and
// never stop the run; the fresh install either replaces the old one or fails
// on its own.
func (u *Uninstaller) Uninstall(ctx context.Context, rec Record) {
	if len(rec.UninstallCommand) == 0 {
		return
	}

	argv := rec.UninstallCommand
	runCtx := ctx
	if u.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, u.Timeout)
		defer cancel()
	}

	if !fileExists(argv[0]) {
		logger.Warn("[WARN] %s not found, skipping uninstall command\n", argv[0])
	} else {
		logger.Debug("[DEBUG] Running command: %s\n", strings.Join(argv, " "))
		res := u.Runner.Run(runCtx, argv[0], argv[1:]...)
		if res.Ok(nil) {
			logger.Info("[INFO] Removed previous installation\n")
		} else {
			logger.Warn("[WARN] Uninstall reported %s\nOutput: %s\n", res.Error(), res.Output)
		}
	}

	if u.SettleDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(u.SettleDelay):
	}
}

package installer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/target"
)

// State is a step of the install sequence.
type State int

const (
	StateStart State = iota
	StateProbeDone
	StateConfirmedOrAbsent
	StateCancelled
	StateDownloaded
	StateInstalled
	StateRegistered
	StateCleanedUp
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateStart:             "start",
	StateProbeDone:         "probe-done",
	StateConfirmedOrAbsent: "confirmed-or-absent",
	StateCancelled:         "cancelled",
	StateDownloaded:        "downloaded",
	StateInstalled:         "installed",
	StateRegistered:        "registered",
	StateCleanedUp:         "cleaned-up",
	StateDone:              "done",
	StateAborted:           "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Orchestrator drives one target through probe, optional uninstall,
// download, silent install, registration and cleanup.
type Orchestrator struct {
	Prober      Prober
	Fetcher     Fetcher
	Executor    *Executor
	Registrar   *Registrar
	Uninstaller *Uninstaller
	Confirmer   Confirmer

	TempDir         string
	DownloadTimeout time.Duration
	AssumeYes       bool // replace an existing installation without asking
}

// New wires an orchestrator from config using the real probe, transport and process runner.
func New(cfg config.Config, confirmer Confirmer) *Orchestrator {
	runner := ExecRunner{}
	return &Orchestrator{
		Prober:      NewServiceProbe(),
		Fetcher:     NewHTTPFetcher(),
		Executor:    &Executor{Runner: runner, Strict: cfg.Strict(), Timeout: cfg.Timeouts.Install},
		Registrar:   &Registrar{Runner: runner, Strict: cfg.Strict(), Timeout: cfg.Timeouts.Register},
		Uninstaller: &Uninstaller{Runner: runner, Timeout: cfg.Timeouts.Uninstall, SettleDelay: cfg.SettleDelay},
		Confirmer:   confirmer,

		TempDir:         cfg.TempDir,
		DownloadTimeout: cfg.Timeouts.Download,
	}
}

// run tracks the state of a single sequence.
type run struct {
	d     target.Descriptor
	state State
}

func (r *run) to(s State) {
	logger.Debug("[DEBUG] %s %s -> %s\n", r.d.Name, r.state, s)
	r.state = s
}

// Run executes the install sequence for d. Every failure is converted into
// an Outcome; nothing is returned to the caller as an error.
func (o *Orchestrator) Run(ctx context.Context, d target.Descriptor, token string) Outcome {
	r := &run{d: d, state: StateStart}

	token, err := ValidateToken(token)
	if err != nil {
		return r.abort("missing token", err)
	}

	logger.Info("%s Checking for an existing installation...\n", d.Tag())
	rec := o.Prober.Probe(d)
	r.to(StateProbeDone)

	if rec.Present {
		logger.Warn("%s Already installed.\n", d.Tag())
		if !o.confirmRemoval() {
			r.to(StateCancelled)
			logger.Plain("%s Installation cancelled.\n", d.Tag())
			out := Skipped("installation cancelled by operator", ErrUserCancelled)
			out.State = StateCancelled
			return out
		}
		o.Uninstaller.Uninstall(ctx, rec)
	}
	r.to(StateConfirmedOrAbsent)

	art := NewArtifact(o.TempDir, d)
	out := o.install(ctx, r, art, token)

	if err := art.Release(); err != nil {
		logger.Error("[ERROR] %v\n", err)
	} else if out.Status == StatusSuccess {
		r.to(StateCleanedUp)
	}
	if out.Status != StatusSuccess {
		return out
	}

	r.to(StateDone)
	logger.Info("%s Installation and registration complete!\n", d.Tag())
	return success()
}

// install covers the steps that hold the temp artifact.
func (o *Orchestrator) install(ctx context.Context, r *run, art Artifact, token string) Outcome {
	d := r.d

	logger.Info("%s Downloading %s...\n", d.Tag(), art.URL)
	dlCtx := ctx
	if o.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		dlCtx, cancel = context.WithTimeout(ctx, o.DownloadTimeout)
		defer cancel()
	}
	if err := o.Fetcher.Fetch(dlCtx, art.URL, art.Path); err != nil {
		return r.abort("download error", wrapAs(ErrDownload, err))
	}
	if err := art.Verify(); err != nil {
		return r.abort("download error", err)
	}
	r.to(StateDownloaded)

	logger.Info("%s Installing...\n", d.Tag())
	if err := o.Executor.Install(ctx, d, art.Path); err != nil {
		return r.abort("install error", wrapAs(ErrInstallExecution, err))
	}
	if !fileExists(d.BinaryPath) {
		return r.abort("binary missing post-install",
			fmt.Errorf("%w: %s not found after install", ErrInstallExecution, d.BinaryPath))
	}
	r.to(StateInstalled)

	logger.Info("%s Registering the service token...\n", d.Tag())
	if err := o.Registrar.Register(ctx, d, token); err != nil {
		return r.abort("registration error", wrapAs(ErrRegistration, err))
	}
	r.to(StateRegistered)

	return success()
}

func (o *Orchestrator) confirmRemoval() bool {
	if o.AssumeYes {
		return true
	}
	if o.Confirmer == nil {
		return false
	}
	ok, err := o.Confirmer.Confirm("Remove the existing installation?")
	if err != nil {
		logger.Error("[ERROR] Failed to read confirmation: %v\n", err)
		return false
	}
	return ok
}

func (r *run) abort(reason string, err error) Outcome {
	r.to(StateAborted)
	logger.Error("%s %s: %v\n", r.d.Tag(), reason, err)
	return Failed(reason, err)
}

// wrapAs makes sure err is classified as kind.
func wrapAs(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %v", kind, err)
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/installer"
	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/prompt"
	"agent-bootstrap/internal/target"
)

// options carries values that bypass the interactive prompts.
type options struct {
	Target    string
	Token     string
	AssumeYes bool
}

var installOpts options

// bootstrap collects the target and token, validates them and runs exactly
// one install sequence. The only error it returns is fatal input validation;
// everything else is reported through the Outcome.
func bootstrap(ctx context.Context, p prompt.Prompter, cfg config.Config, opts options,
	build func(config.Config) *installer.Orchestrator) (installer.Outcome, error) {

	rawChoice := opts.Target
	if rawChoice == "" {
		var err error
		rawChoice, err = p.Choose("Select what to register:", menuOptions())
		if err != nil {
			return installer.Failed("prompt error", err), nil
		}
	}

	rawToken := opts.Token
	if rawToken == "" {
		var err error
		rawToken, err = p.Token("Enter your registration token")
		if err != nil {
			return installer.Failed("prompt error", err), nil
		}
	}
	token, err := installer.ValidateToken(rawToken)
	if err != nil {
		return installer.Outcome{}, err
	}

	out := runChoice(ctx, cfg, opts, rawChoice, token, build)
	report(out)
	return out, nil
}

func runChoice(ctx context.Context, cfg config.Config, opts options, rawChoice, token string,
	build func(config.Config) *installer.Orchestrator) installer.Outcome {

	choice, err := target.ParseChoice(rawChoice)
	if err != nil {
		return installer.Skipped("invalid choice", fmt.Errorf("%w: %q", err, rawChoice))
	}

	d, err := cfg.Descriptor(choice)
	if err != nil {
		return installer.Failed("unsupported target", err)
	}
	if err := d.Validate(); err != nil {
		return installer.Failed("invalid target configuration", err)
	}

	o := build(cfg)
	o.AssumeYes = opts.AssumeYes
	return o.Run(ctx, d, token)
}

func menuOptions() []prompt.Option {
	opts := make([]prompt.Option, 0, len(target.Choices))
	for _, c := range target.Choices {
		opts = append(opts, prompt.Option{Key: string(c), Label: c.Label()})
	}
	return opts
}

// report prints the final outcome line.
func report(out installer.Outcome) {
	switch out.Status {
	case installer.StatusSuccess:
		logger.Info("[INFO] Done!\n")
	case installer.StatusSkipped:
		if errors.Is(out.Err, installer.ErrInvalidChoice) {
			logger.Error("[ERROR] Invalid choice. Nothing to do.\n")
		} else {
			logger.Warn("[WARN] Skipped: %s\n", out.Reason)
		}
		logger.Plain("Done!\n")
	default:
		logger.Error("[ERROR] Failed: %s\n", out.Reason)
		logger.Plain("Done!\n")
	}
}

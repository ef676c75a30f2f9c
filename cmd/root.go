package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/installer"
	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/prompt"
)

// Global flags shared by every subcommand.
var (
	debug      bool
	logFile    string
	configPath string
	tempDir    string
	strictMode bool
	compatMode bool
)

// logCloser is set when --log-file attaches a file sink.
var logCloser io.Closer

// rootCmd installs one of the two services. Without flags it asks the
// operator for the target, the token and, if needed, confirmation.
var rootCmd = &cobra.Command{
	Use:           "agent-bootstrap",
	Short:         "Install and register the tunnel agent or the bridge client",
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun initialises logging before any subcommand.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
		if logFile != "" {
			logCloser = logger.AttachFile(logFile)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p := newPrompter()
		_, err = bootstrap(cmd.Context(), p, cfg, installOpts, func(cfg config.Config) *installer.Orchestrator {
			return installer.New(cfg, p)
		})
		return err
	},
}

// newPrompter is replaced in tests.
var newPrompter = func() prompt.Prompter {
	return prompt.New(os.Stdin, os.Stdout)
}

// Execute registers flags and runs the CLI. An empty registration token and
// usage errors exit with status 1; every other outcome exits normally.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportFailure(err)
		stop()
		os.Exit(1)
	}
}

// reportFailure logs the error that ends the process. Cobra skips
// PersistentPostRun when RunE fails, so the log file is closed here.
func reportFailure(err error) {
	if errors.Is(err, installer.ErrInputValidation) {
		logger.Error("%v. Exiting.\n", err)
	} else {
		logger.Error("[ERROR] %v\n", err)
	}
	closeLog()
}

// closeLog detaches and closes the log file, if one was attached.
func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file (rotated)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&tempDir, "temp-dir", "", "Directory for downloaded artifacts (default: system temp)")
	rootCmd.PersistentFlags().BoolVar(&strictMode, "strict", false, "Fail when the installer or registration exits non-zero")
	rootCmd.PersistentFlags().BoolVar(&compatMode, "compat", false, "Ignore installer and registration exit codes")
	rootCmd.MarkFlagsMutuallyExclusive("strict", "compat")

	rootCmd.Flags().StringVarP(&installOpts.Target, "target", "t", "", "Target to install: 1|tunnel or 2|bridge")
	rootCmd.Flags().StringVar(&installOpts.Token, "token", "", "Registration token")
	rootCmd.Flags().BoolVarP(&installOpts.AssumeYes, "yes", "y", false, "Replace an existing installation without asking")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.LoadConfig(configPath, optional)
	if err != nil {
		return config.Config{}, err
	}
	if tempDir != "" {
		cfg.TempDir = tempDir
	}
	switch {
	case strictMode:
		cfg.Mode = config.ModeStrict
	case compatMode:
		cfg.Mode = config.ModeCompat
	}
	logger.Debug("[DEBUG] Config: mode=%s temp_dir=%q settle_delay=%s\n", cfg.Mode, cfg.TempDir, cfg.SettleDelay)
	return cfg, nil
}

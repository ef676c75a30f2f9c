package cmd

import (
	"github.com/spf13/cobra"

	"agent-bootstrap/internal/installer"
	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/target"
)

// newProber is replaced in tests.
var newProber = func() installer.Prober { return installer.NewServiceProbe() }

// statusCmd probes both targets without changing anything.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the tunnel agent or bridge client is already installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		prober := newProber()
		for _, c := range target.Choices {
			d, err := cfg.Descriptor(c)
			if err != nil {
				logger.Warn("[WARN] %s: %v\n", c.Label(), err)
				continue
			}
			rec := prober.Probe(d)
			logger.Plain("%-20s %s\n", d.DisplayName, installer.StatusText(rec))
		}
		return nil
	},
}

// targetsCmd prints the resolved descriptors after config overrides.
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List install targets and where they are downloaded from",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		for _, c := range target.Choices {
			d, err := cfg.Descriptor(c)
			if err != nil {
				logger.Warn("[WARN] %s: %v\n", c.Label(), err)
				continue
			}
			logger.Plain("%s - %s\n", c, d.DisplayName)
			logger.Plain("    url:      %s\n", d.URL)
			logger.Plain("    method:   %s\n", d.Method)
			logger.Plain("    binary:   %s\n", d.BinaryPath)
			logger.Plain("    service:  %s\n", d.ServiceName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(targetsCmd)
}

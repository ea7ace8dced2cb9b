package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-research/internal/config"
	"github.com/custodia-labs/sercha-research/internal/logging"
)

// cli carries state shared by every subcommand.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "sercha-research",
		Short:         "Ask questions about your documents",
		Long:          "sercha-research indexes uploaded documents and web pages and answers questions about them with cited sources.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logging.New(logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			})
			return nil
		},
		// Without a subcommand, run whatever RUN_MODE selects.
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMode(cmd.Context(), c.cfg.Server.RunMode)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $SERCHA_CONFIG)")

	root.AddCommand(
		c.newServeCmd(),
		c.newWorkerCmd(),
		c.newAllCmd(),
		c.newIngestCmd(),
		c.newAskCmd(),
	)

	return root
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-research/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-research/internal/config"
	"github.com/custodia-labs/sercha-research/internal/worker"
)

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMode(cmd.Context(), config.ModeServe)
		},
	}
}

func (c *cli) newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the retention cleanup only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMode(cmd.Context(), config.ModeWorker)
		},
	}
}

func (c *cli) newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the HTTP API and the retention cleanup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMode(cmd.Context(), config.ModeAll)
		},
	}
}

// runMode blocks until ctx is cancelled or a component fails.
func (c *cli) runMode(ctx context.Context, mode string) error {
	switch mode {
	case config.ModeServe, config.ModeWorker, config.ModeAll:
	default:
		return fmt.Errorf("unknown mode: %s (use: serve, worker, or all)", mode)
	}

	c.logger.Info("sercha-research starting", "version", version, "mode", mode)

	a, err := newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(ctx)

	if mode == config.ModeWorker || mode == config.ModeAll {
		g.Go(func() error {
			return runWorker(ctx, a)
		})
	}

	if mode == config.ModeServe || mode == config.ModeAll {
		rc := a.runtime.Config()
		server := http.NewServer(http.Config{
			Host:                c.cfg.Server.Host,
			Port:                c.cfg.Server.Port,
			Version:             version,
			CORSOrigins:         c.cfg.Server.CORSOrigins,
			MaxUploadBytes:      c.cfg.MaxFileSize(),
			LLMConfigured:       rc.LLMAvailable(),
			EmbeddingConfigured: rc.EmbeddingAvailable(),
			Logger:              c.logger,
		}, http.Services{
			Query:     a.query,
			Documents: a.documents,
			Limiter:   a.limiter,
			Database:  a.registry,
		})

		g.Go(func() error {
			return server.Start(ctx)
		})
	}

	err = g.Wait()
	c.logger.Info("sercha-research stopped")
	return err
}

// runWorker hosts the cleanup scheduler until ctx is done.
func runWorker(ctx context.Context, a *app) error {
	cleanup := a.cleanupScheduler()
	if cleanup == nil {
		a.logger.Info("retention cleanup disabled")
	}

	w := worker.NewWorker(worker.WorkerConfig{
		Cleanup: cleanup,
		Logger:  a.logger,
	})
	if err := w.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	w.Stop()
	return nil
}

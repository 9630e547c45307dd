package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"hearingwatch/api"
	"hearingwatch/config"
	"hearingwatch/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hearingwatch",
		Short:         "Reconcile committee hearings with their published videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newServeCommand())
	return rootCmd
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one refresh and export the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.orchestrator.RunOnce(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("run finished", zap.String(logging.FieldRunID, report.RunID), zap.Int("events", report.Events))
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	var (
		port     string
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the events API and refresh on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port != "" {
				cfg.Port = port
			}
			if schedule != "" {
				cfg.RefreshSchedule = schedule
			}

			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			server := api.NewServer(a.orchestrator, a.store, a.metrics, a.logger, cfg.Port)
			server.Start()
			if cfg.RefreshSchedule != "" {
				if err := server.StartCron(cfg.RefreshSchedule); err != nil {
					return err
				}
			}

			<-ctx.Done()

			shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Minute)
			defer stop()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for refreshes (overrides REFRESH_SCHEDULE)")
	return cmd
}

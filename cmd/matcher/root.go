package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/resume-matcher/internal/app"
	"github.com/fairyhunter13/resume-matcher/internal/config"
)

const appName = "matcher"

// runtime holds what the persistent hooks build for a subcommand.
type runtime struct {
	envFile    string
	policyFile string

	cfg            config.Config
	app            *app.App
	shutdownTracer func(context.Context) error
	metricsSrv     *http.Server
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "matcher compares a résumé with a job description and reports how well they fit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == versionCmdName {
				return nil
			}
			return rt.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.teardown(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&rt.envFile, "env-file", "", "dotenv file to load before reading the environment (default .env when present)")
	cmd.PersistentFlags().StringVar(&rt.policyFile, "policy", "", "YAML policy file with section keywords and stop words (overrides POLICY_FILE)")

	cmd.AddCommand(newEvaluateCmd(rt), newBackendsCmd(rt), newVersionCmd())
	return cmd
}

func (rt *runtime) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if rt.envFile != "" {
		if err := godotenv.Load(rt.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rt.policyFile != "" {
		cfg.PolicyFile = rt.policyFile
	}
	rt.cfg = cfg

	slog.SetDefault(observability.SetupLogger(cfg))
	observability.InitMetrics()

	shutdown, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	rt.shutdownTracer = shutdown

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, policy)
	if err != nil {
		return err
	}
	rt.app = a

	if cfg.MetricsAddr != "" {
		rt.startMetrics(cfg.MetricsAddr)
	}
	return nil
}

func (rt *runtime) startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	rt.metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := rt.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.String("addr", addr), slog.Any("error", err))
		}
	}()
	slog.Info("metrics server listening", slog.String("addr", addr))
}

func (rt *runtime) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if rt.metricsSrv != nil {
		_ = rt.metricsSrv.Shutdown(ctx)
	}
	if rt.shutdownTracer != nil {
		_ = rt.shutdownTracer(ctx)
	}
	return rt.app.Close()
}

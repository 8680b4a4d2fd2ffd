package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/anglepath/metrics"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/planner"
	"github.com/katalvlaran/anglepath/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves POST /v1/routes, GET /v1/motions, /healthz and /metrics.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "listen address (default :8080)")
	serveCmd.Flags().Duration("plan-timeout", time.Minute, "upper bound for a single search")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		cfg.Server.Listen = addr
	}
	costs, err := cfg.Costs.Table()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts := []planner.Option{
		planner.WithLogger(log),
		planner.WithMetrics(metrics.New(reg)),
	}
	if cfg.Server.Concurrency > 0 {
		opts = append(opts, planner.WithConcurrency(cfg.Server.Concurrency))
	}
	c, err := openCache(cmd, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("result cache disabled")
	} else if c != nil {
		defer c.Close()
		opts = append(opts, planner.WithCache(c))
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("result cache enabled")
	}

	timeout, _ := cmd.Flags().GetDuration("plan-timeout")
	api := server.New(planner.New(motion.DefaultTable, costs, opts...),
		server.WithLogger(log),
		server.WithGatherer(reg),
		server.WithCosts(costs),
		server.WithTimeout(timeout),
	)
	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case sig := <-shutdown:
		log.Info().Stringer("signal", sig).Msg("shutting down")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown did not complete")
			return srv.Close()
		}
		log.Info().Msg("server stopped")
	}

	return nil
}

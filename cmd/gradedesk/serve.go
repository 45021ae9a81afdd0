package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/gradedesk/gradedesk/internal/adapters/http"
	"github.com/gradedesk/gradedesk/internal/adapters/memory"
	redisAdapter "github.com/gradedesk/gradedesk/internal/adapters/redis"
	"github.com/gradedesk/gradedesk/internal/observability"
	"github.com/gradedesk/gradedesk/internal/workflows"
	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/mcpclient"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow HTTP server",
	Long:  `Starts the gradedesk workflow engine in server mode, exposing a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger := newLogger(cfg)
		metrics := observability.NewMetrics()

		set := clients.NewSet(cfg,
			mcpclient.WithLogger(logger),
			mcpclient.WithMetrics(metrics),
		)
		registry := workflows.DefaultRegistry(set)

		// os.Exit skips deferred calls, so the store is closed explicitly on
		// every exit path.
		var store workflows.Store
		closeStore := func() {}
		if cfg.Redis.Enabled {
			redisStore := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redisAdapter.WithTTL(24*time.Hour))
			closeStore = func() {
				if err := redisStore.Close(); err != nil {
					logger.Error("redis close failed", "error", err)
				}
			}
			store = redisStore
		} else {
			store = memory.NewStore()
		}

		handler := httpAdapter.NewHandler(registry, store, logger, metrics.Registry())

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			closeStore()
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("forced close failed", "error", err)
				}
			}
			closeStore()
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

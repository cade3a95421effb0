package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/statesim"
	httpAdapter "github.com/aretw0/statesim/internal/adapters/http"
	"github.com/aretw0/statesim/internal/logging"
	"github.com/aretw0/statesim/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/statesim/pkg/adapters/redis"
	"github.com/aretw0/statesim/pkg/observability"
	"github.com/aretw0/statesim/pkg/ports"
	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// serveConfig is populated from the environment; flags take precedence
// for the listen address.
type serveConfig struct {
	Addr          string `env:"STATESIM_ADDR" envDefault:":8080"`
	RedisAddr     string `env:"STATESIM_REDIS_ADDR"`
	RedisPassword string `env:"STATESIM_REDIS_PASSWORD"`
	RedisDB       int    `env:"STATESIM_REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"STATESIM_REDIS_PREFIX"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the simulation engine in server mode, exposing machine state, events, undo, diagrams and saved runs as a JSON API over HTTP. Runs are kept in memory unless STATESIM_REDIS_ADDR points at a Redis instance.`,
	Run: func(cmd *cobra.Command, args []string) {
		var cfg serveConfig
		if err := env.Parse(&cfg); err != nil {
			fmt.Printf("Config error: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		logger := logging.New(slog.LevelInfo)

		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)
		hooks := observability.Combine(
			observability.LogHooks(logger),
			observability.MetricHooks(metrics),
		)

		eng := statesim.New(
			statesim.WithLogger(logger),
			statesim.WithLifecycleHooks(hooks),
		)
		if def, err := loadDefinition(cmd, args); err == nil {
			if err := eng.Load(def); err != nil {
				logger.Warn("initial definition rejected", "error", err)
			}
		} else {
			logger.Info("starting without a machine, POST /machine to load one", "error", err)
		}

		var store ports.RunStore
		if cfg.RedisAddr != "" {
			opts := []redisAdapter.Option{}
			if cfg.RedisPrefix != "" {
				opts = append(opts, redisAdapter.WithPrefix(cfg.RedisPrefix))
			}
			redisStore := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
			defer redisStore.Close()
			store = redisStore
			logger.Info("using redis run store", "addr", cfg.RedisAddr)
		} else {
			store = memory.NewStore()
			logger.Info("using in-memory run store")
		}

		handler := httpAdapter.NewHandler(eng, store, reg)

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting statesim server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Statesim server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}

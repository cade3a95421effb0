package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/statesim"
	"github.com/aretw0/statesim/internal/logging"
	redisAdapter "github.com/aretw0/statesim/pkg/adapters/redis"
	"github.com/aretw0/statesim/pkg/domain"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded run against the machine",
	Long:  `Resets the machine and re-applies a recorded event sequence, step by step. The run comes from --run (a JSON file holding a saved run or a bare step array) or from the Redis run store via --run-id. Failed steps are logged and skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		runFile, _ := cmd.Flags().GetString("run")
		runID, _ := cmd.Flags().GetString("run-id")
		delay, _ := cmd.Flags().GetDuration("delay")
		verbose, _ := cmd.Flags().GetBool("verbose")

		if (runFile == "") == (runID == "") {
			fmt.Println("Error: exactly one of --run or --run-id is required.")
			os.Exit(1)
		}

		logger := logging.New(slog.LevelInfo)
		if verbose {
			logger = logging.New(slog.LevelDebug)
		}

		eng, err := loadEngine(cmd, args, statesim.WithLogger(logger))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		steps, err := resolveSteps(ctx, runFile, runID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if err := eng.Replay(ctx, steps, delay); err != nil {
			fmt.Printf("Replay aborted: %v\n", err)
			os.Exit(1)
		}

		snap := eng.State()
		fmt.Printf("Replayed %d steps, final state: %s\n", len(steps), snap.StateID)
		if out, err := json.MarshalIndent(snap.Context, "", "  "); err == nil {
			fmt.Println(string(out))
		}
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().String("run", "", "Path to a saved run file (JSON)")
	replayCmd.Flags().String("run-id", "", "ID of a run saved in the Redis run store")
	replayCmd.Flags().Duration("delay", 500*time.Millisecond, "Pause between replayed steps")
	replayCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}

// resolveSteps loads the replay sequence from a file or the Redis store.
func resolveSteps(ctx context.Context, runFile, runID string) ([]domain.ReplayStep, error) {
	if runFile != "" {
		data, err := os.ReadFile(runFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", runFile, err)
		}

		var run domain.Run
		if err := json.Unmarshal(data, &run); err == nil && len(run.Transitions) > 0 {
			return run.Transitions, nil
		}

		var steps []domain.ReplayStep
		if err := json.Unmarshal(data, &steps); err != nil {
			return nil, fmt.Errorf("parse %s: %w", runFile, err)
		}
		return steps, nil
	}

	var cfg serveConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("--run-id requires STATESIM_REDIS_ADDR to be set")
	}

	opts := []redisAdapter.Option{}
	if cfg.RedisPrefix != "" {
		opts = append(opts, redisAdapter.WithPrefix(cfg.RedisPrefix))
	}
	store := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
	defer store.Close()

	run, err := store.Load(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return run.Transitions, nil
}

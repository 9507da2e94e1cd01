package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/oraclefeed/internal/cache"
	"github.com/aristath/oraclefeed/internal/config"
	"github.com/aristath/oraclefeed/internal/retry"
	"github.com/aristath/oraclefeed/internal/scheduler"
	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

func newAggregateOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate-once",
		Short: "Run a single fetch->normalize->aggregate cycle and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return aggregateOnce()
		},
	}
}

func aggregateOnce() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := loadLogger(cfg)

	valueCache := cache.New()
	orch := scheduler.New(scheduler.Config{
		Symbols:     cfg.StockSymbols,
		Ingestors:   defaultIngestors(cfg),
		Registry:    oraclecore.DefaultRegistry(),
		Engine:      oraclecore.NewEngine(oraclecore.NewWeightRegistry(cfg.SourceWeights)),
		Cache:       valueCache,
		Options:     cfg.ToOptions(),
		RetryPolicy: retry.Policy{MaxAttempts: 3, Delay: time.Second, Mode: retry.Exponential},
		Logger:      log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := orch.RunOnce(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

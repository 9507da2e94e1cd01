package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aristath/oraclefeed/internal/cache"
	"github.com/aristath/oraclefeed/internal/config"
	"github.com/aristath/oraclefeed/internal/ingest"
	"github.com/aristath/oraclefeed/internal/metrics"
	"github.com/aristath/oraclefeed/internal/retry"
	"github.com/aristath/oraclefeed/internal/scheduler"
	"github.com/aristath/oraclefeed/internal/server"
	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

func newRunCmd() *cobra.Command {
	var port int
	var devMode bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler and the debug HTTP surface, and run until signaled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForever(port, devMode)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8001, "debug HTTP server port")
	cmd.Flags().BoolVar(&devMode, "dev", false, "disable debug-server response compression (pretty logs are set by DEV_MODE=true, not by this flag)")
	return cmd
}

func runForever(port int, devMode bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := loadLogger(cfg)

	valueCache := cache.New()
	m := metrics.New(prometheus.DefaultRegisterer)

	// Load always fills FetchIntervalMillis (it has a default), so cron
	// mode is only reachable when FETCH_INTERVAL_MILLIS was left unset.
	interval := cfg.FetchIntervalMillis
	if cfg.CronExpression != "" && os.Getenv("FETCH_INTERVAL_MILLIS") == "" {
		interval = 0
	}

	orch := scheduler.New(scheduler.Config{
		Symbols:         cfg.StockSymbols,
		Ingestors:       defaultIngestors(cfg),
		Registry:        oraclecore.DefaultRegistry(),
		Engine:          oraclecore.NewEngine(oraclecore.NewWeightRegistry(cfg.SourceWeights)),
		Cache:           valueCache,
		Options:         cfg.ToOptions(),
		RetryPolicy:     retry.Policy{MaxAttempts: 3, Delay: time.Second, Mode: retry.Exponential},
		Metrics:         m,
		Logger:          log,
		IntervalMillis:  interval,
		CronExpression:  cfg.CronExpression,
		MarketHours:     marketHoursFor(cfg),
		SymbolExchanges: cfg.SymbolExchanges,
	})

	srv := server.New(server.Config{
		Port:    port,
		DevMode: devMode,
		Cache:   valueCache,
		Logger:  log,
		ReadyCheck: func() bool {
			return true
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch.Start(ctx)

	httpServer := &http.Server{Addr: httpAddr(port), Handler: srv.Router()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("debug server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	orch.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("debug server shutdown error")
	}

	return nil
}

// defaultIngestors wires a mock ingestor pool until concrete provider
// clients (out of scope for this core) are plugged in; it still
// exercises the fetch->normalize->aggregate path end-to-end for every
// configured symbol. No publisher is wired, so the publish step is skipped.
func defaultIngestors(cfg *config.Config) []ingest.Ingestor {
	base := make(map[string]float64, len(cfg.StockSymbols))
	for _, symbol := range cfg.StockSymbols {
		base[symbol] = 100
	}
	return []ingest.Ingestor{
		ingest.NewMockIngestor("mock-a", base, 0.01),
		ingest.NewMockIngestor("mock-b", base, 0.01),
		ingest.NewMockIngestor("mock-c", base, 0.01),
	}
}

// marketHoursFor enables exchange-hours gating only when the operator
// has actually mapped symbols to exchanges via the sources config file;
// otherwise every symbol is fetched every cycle regardless of the clock.
func marketHoursFor(cfg *config.Config) *scheduler.MarketHours {
	if len(cfg.SymbolExchanges) == 0 {
		return nil
	}
	return scheduler.NewDefaultMarketHours()
}

func httpAddr(port int) string {
	return ":" + strconv.Itoa(port)
}

// Package scheduler implements the fetch orchestrator: the periodic
// driver that pulls raw quotes from ingestor collaborators, normalizes
// and aggregates them, and hands the result to downstream publishing.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/aristath/oraclefeed/internal/cache"
	"github.com/aristath/oraclefeed/internal/ingest"
	"github.com/aristath/oraclefeed/internal/metrics"
	"github.com/aristath/oraclefeed/internal/publish"
	"github.com/aristath/oraclefeed/internal/retry"
	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

// SymbolExchange optionally maps a symbol to the exchange name the
// market-hours gate should check before fetching it. Symbols absent from
// this map are never gated.
type SymbolExchange map[string]string

// CycleReport summarizes one orchestrator cycle for logging and for
// callers that want a structured result instead of just log lines.
type CycleReport struct {
	ID                  string
	StartedAt           time.Time
	FinishedAt          time.Time
	SucceededSymbols    []string
	FailedSymbols       map[string]string
	SkippedClosedMarket []string
	PublishFailures     int
}

// Config wires an Orchestrator's collaborators and knobs. Symbols,
// Options, and at most one of CronExpression/IntervalMillis are normally
// sourced from internal/config.
type Config struct {
	Symbols         []string
	Ingestors       []ingest.Ingestor
	Registry        *oraclecore.Registry
	Engine          *oraclecore.Engine
	Cache           *cache.Cache
	Options         oraclecore.Options
	RetryPolicy     retry.Policy
	Publisher       publish.Publisher
	CommitmentHook  publish.CommitmentHook
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
	IntervalMillis  int64
	CronExpression  string
	MarketHours     *MarketHours
	SymbolExchanges SymbolExchange
	IngestTimeout   time.Duration
}

// Orchestrator is the Fetch Orchestrator / Scheduler. A cycle is
// single-flight: at most one runOnce is ever executing, and a tick that
// fires while one is still in flight is skipped rather than queued.
type Orchestrator struct {
	cfg Config
	log zerolog.Logger

	breakers   map[string]*gobreaker.CircuitBreaker
	breakersMu sync.Mutex

	cronSched *cron.Cron
	ticker    *time.Ticker
	stopTick  chan struct{}

	mu        sync.Mutex
	running   bool
	inFlight  bool
	cancelRun context.CancelFunc
}

// New constructs an orchestrator from cfg. It does not start anything.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		log:      cfg.Logger.With().Str("component", "scheduler").Logger(),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Start begins the periodic loop: interval mode if IntervalMillis is set
// (it wins over cron when both are configured), otherwise cron mode if
// CronExpression is set. RunOnce fires immediately on start, then recurs.
// A second Start on an already-running orchestrator is a no-op with a
// warning.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		o.log.Warn().Msg("start called on an already-running scheduler, ignoring")
		return
	}
	o.running = true
	o.mu.Unlock()

	go func() {
		_, _ = o.RunOnce(ctx)
	}()

	switch {
	case o.cfg.IntervalMillis > 0:
		o.startInterval(ctx)
	case o.cfg.CronExpression != "":
		o.startCron(ctx)
	default:
		o.log.Warn().Msg("no interval or cron expression configured, scheduler will only run once")
	}
}

func (o *Orchestrator) startInterval(ctx context.Context) {
	o.ticker = time.NewTicker(time.Duration(o.cfg.IntervalMillis) * time.Millisecond)
	o.stopTick = make(chan struct{})
	go func() {
		for {
			select {
			case <-o.ticker.C:
				_, _ = o.RunOnce(ctx)
			case <-o.stopTick:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (o *Orchestrator) startCron(ctx context.Context) {
	o.cronSched = cron.New(cron.WithSeconds())
	_, err := o.cronSched.AddFunc(o.cfg.CronExpression, func() {
		_, _ = o.RunOnce(ctx)
	})
	if err != nil {
		o.log.Error().Err(err).Str("expression", o.cfg.CronExpression).Msg("invalid cron expression, scheduler not started")
		return
	}
	o.cronSched.Start()
}

// Stop halts future cycles and cancels the context of an in-flight cycle,
// which then ends at its next cancellation point; Stop does not wait for it.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return
	}
	o.running = false

	if o.ticker != nil {
		o.ticker.Stop()
		close(o.stopTick)
	}
	if o.cronSched != nil {
		o.cronSched.Stop()
	}
	if o.cancelRun != nil {
		o.cancelRun()
	}
	o.log.Info().Msg("scheduler stopped")
}

// RunOnce executes a single fetch->normalize->aggregate->publish cycle.
// If a cycle is already in flight it is skipped and (nil, nil) is
// returned with a metrics counter bump; a stopped scheduler still allows
// an explicit RunOnce call (e.g. for an "aggregate-once" CLI command).
func (o *Orchestrator) RunOnce(ctx context.Context) (*CycleReport, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		o.log.Debug().Msg("cycle skipped: previous cycle still in flight")
		if o.cfg.Metrics != nil {
			o.cfg.Metrics.CyclesSkippedTotal.Inc()
		}
		return nil, nil
	}
	o.inFlight = true
	cycleCtx, cancel := context.WithCancel(ctx)
	o.cancelRun = cancel
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.cancelRun = nil
		o.mu.Unlock()
		cancel()
	}()

	report := &CycleReport{
		ID:            uuid.NewString(),
		StartedAt:     time.Now(),
		FailedSymbols: make(map[string]string),
	}
	log := o.log.With().Str("cycle_id", report.ID).Logger()

	symbols := o.gateMarketHours(log, report)
	raws := o.fetchAll(cycleCtx, log, symbols)

	successes, failures := o.cfg.Registry.NormalizeBatch(raws)
	for _, f := range failures {
		log.Warn().Str("symbol", f.Raw.Symbol).Str("kind", string(f.Err.Kind)).Msg("dropped raw quote during normalization")
	}

	bySymbol := make(map[string][]oraclecore.CanonicalQuote)
	for _, cq := range successes {
		bySymbol[cq.Symbol] = append(bySymbol[cq.Symbol], cq)
	}

	for symbol, quotes := range bySymbol {
		consensus, err := o.cfg.Engine.Aggregate(symbol, quotes, o.cfg.Options)
		if err != nil {
			report.FailedSymbols[symbol] = err.Error()
			log.Warn().Err(err).Str("symbol", symbol).Msg("aggregation failed")
			continue
		}

		if o.cfg.Cache != nil {
			o.cfg.Cache.Update(consensus, quotes)
		}
		if o.cfg.Metrics != nil {
			o.cfg.Metrics.ConsensusConfidence.WithLabelValues(symbol).Observe(consensus.Confidence)
		}

		o.publish(cycleCtx, log, report, consensus)
		report.SucceededSymbols = append(report.SucceededSymbols, symbol)
	}

	report.FinishedAt = time.Now()
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.CyclesTotal.WithLabelValues(outcomeOf(report)).Inc()
		o.cfg.Metrics.CycleDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
	log.Info().
		Int("succeeded", len(report.SucceededSymbols)).
		Int("failed", len(report.FailedSymbols)).
		Int("skipped_closed_market", len(report.SkippedClosedMarket)).
		Msg("cycle complete")

	return report, nil
}

func outcomeOf(report *CycleReport) string {
	if len(report.FailedSymbols) > 0 && len(report.SucceededSymbols) == 0 {
		return "failed"
	}
	return "ok"
}

// gateMarketHours filters the configured symbol list against the
// optional market-hours gate, recording skips on the report.
func (o *Orchestrator) gateMarketHours(log zerolog.Logger, report *CycleReport) []string {
	if o.cfg.MarketHours == nil || o.cfg.SymbolExchanges == nil {
		return o.cfg.Symbols
	}

	now := time.Now()
	active := make([]string, 0, len(o.cfg.Symbols))
	for _, symbol := range o.cfg.Symbols {
		exchange, ok := o.cfg.SymbolExchanges[symbol]
		if !ok || o.cfg.MarketHours.IsOpen(exchange, now) {
			active = append(active, symbol)
			continue
		}
		report.SkippedClosedMarket = append(report.SkippedClosedMarket, symbol)
		log.Debug().Str("symbol", symbol).Str("exchange", exchange).Msg("skipped: exchange closed")
	}
	return active
}

// fetchAll queries every configured ingestor concurrently, each call
// wrapped in retry/backoff and a per-source circuit breaker.
func (o *Orchestrator) fetchAll(ctx context.Context, log zerolog.Logger, symbols []string) []oraclecore.RawQuote {
	if len(symbols) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var all []oraclecore.RawQuote

	timeout := o.cfg.IngestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	for _, ing := range o.cfg.Ingestors {
		wg.Add(1)
		go func(ing ingest.Ingestor) {
			defer wg.Done()

			breaker := o.breakerFor(ing.Name())
			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			result, err := breaker.Execute(func() (interface{}, error) {
				var quotes []oraclecore.RawQuote
				retryErr := o.cfg.RetryPolicy.Do(fetchCtx, func(ctx context.Context) error {
					q, fetchErr := ing.Fetch(ctx, symbols)
					quotes = q
					return fetchErr
				})
				return quotes, retryErr
			})
			if err != nil {
				wrapped := classifyIngestError(ing.Name(), err)
				log.Warn().Err(wrapped).Str("source", ing.Name()).Msg("ingestor fetch failed")
				if o.cfg.Metrics != nil {
					o.cfg.Metrics.IngestErrorsTotal.WithLabelValues(ing.Name()).Inc()
				}
				return
			}

			quotes, _ := result.([]oraclecore.RawQuote)
			mu.Lock()
			all = append(all, quotes...)
			mu.Unlock()
		}(ing)
	}

	wg.Wait()
	return all
}

// classifyIngestError tags a failed ingestor call with the Kind a
// caller inspecting the cycle would want to branch on: a context
// deadline is an ingestion timeout, anything else is a provider error.
func classifyIngestError(source string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return oraclecore.WrapError(oraclecore.KindIngestionTimeout, err, "ingestor %s timed out", source)
	}
	return oraclecore.WrapError(oraclecore.KindProviderError, err, "ingestor %s failed", source)
}

func (o *Orchestrator) breakerFor(source string) *gobreaker.CircuitBreaker {
	o.breakersMu.Lock()
	defer o.breakersMu.Unlock()
	if b, ok := o.breakers[source]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    source,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	o.breakers[source] = b
	return b
}

// publish invokes the commitment hook and the publisher collaborator for
// one consensus price. Failures are logged and counted; they never abort
// the cycle.
func (o *Orchestrator) publish(ctx context.Context, log zerolog.Logger, report *CycleReport, consensus oraclecore.ConsensusPrice) {
	if o.cfg.Publisher == nil || o.cfg.CommitmentHook == nil {
		return
	}

	digest := o.cfg.CommitmentHook(consensus, consensus.Symbol, "")
	result, err := o.cfg.Publisher.Publish(ctx, publish.Request{
		AssetID:          consensus.Symbol,
		Price:            consensus.Price,
		Timestamp:        consensus.ComputedAt,
		CommitmentDigest: digest,
	})
	if err != nil || !result.OK {
		report.PublishFailures++
		if o.cfg.Metrics != nil {
			o.cfg.Metrics.PublishErrorsTotal.Inc()
		}
		wrapped := oraclecore.WrapError(oraclecore.KindPublishFailure, err, "publishing %s failed", consensus.Symbol)
		log.Error().Err(wrapped).Str("symbol", consensus.Symbol).Msg("publish failed")
		return
	}
	log.Debug().Str("symbol", consensus.Symbol).Str("tx_hash", result.TxHash).Msg("published")
}

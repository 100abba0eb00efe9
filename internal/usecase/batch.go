package usecase

import (
	"context"
	"sort"
	"sync"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	applogger "CoinSight/pkg/logger"
)

// AnalyzeBatch fans the pipeline out over identifiers with a bounded worker
// pool on the configured candle timeframe. Failed or panicking symbols are
// logged and omitted; a degraded run is still a successful run. Results come
// back sorted by signal strength descending.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, identifiers []string) []*models.AnalysisResult {
	return a.AnalyzeBatchTimeframe(ctx, identifiers, a.cfg.Timeframe)
}

// AnalyzeBatchTimeframe is AnalyzeBatch with an explicit candle timeframe.
func (a *Analyzer) AnalyzeBatchTimeframe(ctx context.Context, identifiers []string, tf drepo.Timeframe) []*models.AnalysisResult {
	if len(identifiers) == 0 {
		return nil
	}

	// Kept deliberately low to respect upstream provider rate limits.
	workers := a.cfg.MaxWorkers
	if workers > len(identifiers) {
		workers = len(identifiers)
	}

	sem := make(chan struct{}, workers)
	out := make(chan *models.AnalysisResult, len(identifiers))
	var wg sync.WaitGroup

	for _, id := range identifiers {
		wg.Add(1)
		go func(identifier string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			r := a.analyzeIsolated(ctx, identifier, tf)
			if r != nil {
				out <- r
			}
		}(id)
	}

	wg.Wait()
	close(out)

	results := make([]*models.AnalysisResult, 0, len(identifiers))
	for r := range out {
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SignalStrength > results[j].SignalStrength
	})

	// One multi-row insert for the whole batch instead of per-symbol writes.
	a.persistBatch(ctx, results)

	a.l.Info("batch analysis complete",
		applogger.Int("requested", len(identifiers)),
		applogger.Int("completed", len(results)),
	)
	return results
}

// analyzeIsolated is the per-symbol failure boundary: errors and panics are
// converted into "no result for this symbol" and must never escape.
func (a *Analyzer) analyzeIsolated(ctx context.Context, identifier string, tf drepo.Timeframe) (result *models.AnalysisResult) {
	defer func() {
		if rec := recover(); rec != nil {
			a.metrics.RecordError("analyze_panic")
			a.l.Error("analysis panicked, symbol omitted",
				applogger.String("identifier", identifier),
				applogger.Any("panic", rec),
			)
			result = nil
		}
	}()

	r, err := a.analyze(ctx, identifier, tf)
	if err != nil {
		a.l.Warn("analysis failed, symbol omitted",
			applogger.String("identifier", identifier),
			applogger.Error(err),
		)
		return nil
	}
	return r
}

package usecase

import (
	"sort"

	"CoinSight/internal/domain/models"
)

const performerLimit = 5

// Summarize aggregates a batch of results into distribution statistics.
// Returns nil for an empty batch.
func Summarize(results []*models.AnalysisResult) *models.SummaryStats {
	if len(results) == 0 {
		return nil
	}

	stats := &models.SummaryStats{
		TotalCount:         len(results),
		SignalDistribution: make(map[models.SignalType]int),
		TrendDistribution:  make(map[models.TrendStatus]int),
	}

	var biasSum float64
	var biasCount int
	var changeSum float64
	for _, r := range results {
		stats.SignalDistribution[r.Signal]++
		stats.TrendDistribution[r.Technical.TrendStatus]++
		if r.Technical.Bias7 != nil {
			biasSum += *r.Technical.Bias7
			biasCount++
		}
		changeSum += r.PriceChange24h
	}
	if biasCount > 0 {
		stats.AverageBias = biasSum / float64(biasCount)
	}
	stats.AverageChange24h = changeSum / float64(len(results))

	byChange := make([]*models.AnalysisResult, len(results))
	copy(byChange, results)
	sort.SliceStable(byChange, func(i, j int) bool {
		return byChange[i].PriceChange24h > byChange[j].PriceChange24h
	})

	n := performerLimit
	if n > len(byChange) {
		n = len(byChange)
	}
	for i := 0; i < n; i++ {
		stats.TopPerformers = append(stats.TopPerformers, models.Performer{
			Symbol:    byChange[i].Symbol,
			Change24h: byChange[i].PriceChange24h,
		})
	}
	for i := len(byChange) - 1; i >= len(byChange)-n; i-- {
		stats.WorstPerformers = append(stats.WorstPerformers, models.Performer{
			Symbol:    byChange[i].Symbol,
			Change24h: byChange[i].PriceChange24h,
		})
	}

	return stats
}

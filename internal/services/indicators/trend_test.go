package indicators

import (
	"testing"

	"CoinSight/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name            string
		ma7, ma25, ma99 *float64
		want            models.TrendStatus
	}{
		{"no ma7", nil, f(100), f(100), models.TrendInsufficientData},
		{"only ma7", f(100), nil, nil, models.TrendInsufficientData},
		{"bullish aligned", f(105), f(101), f(95), models.TrendBullishAligned},
		{"bearish aligned", f(90), f(95), f(100), models.TrendBearishAligned},
		{"mixed ordering", f(105), f(95), f(100), models.TrendConsolidating},
		{"ma25 equals ma99", f(105), f(100), f(100), models.TrendConsolidating},
		{"ma7 equals ma25", f(100), f(100), f(95), models.TrendConsolidating},
		{"all equal", f(100), f(100), f(100), models.TrendConsolidating},
		{"short bullish", f(105), f(100), nil, models.TrendShortBullish},
		{"short bearish", f(95), f(100), nil, models.TrendShortBearish},
		{"short tie is bearish", f(100), f(100), nil, models.TrendShortBearish},
		{"ma25 absent ma99 present", f(100), nil, f(90), models.TrendInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTrend(tt.ma7, tt.ma25, tt.ma99)
			if got != tt.want {
				t.Errorf("ClassifyTrend() = %s, want %s", got, tt.want)
			}
		})
	}
}

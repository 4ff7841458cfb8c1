package grading

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Trend is the direction of a student's recent scores.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Analytics thresholds.
const (
	StrugglingBelow = 50
	AtRiskBelow     = 60
	trendWindow     = 3
)

var trendMargin = decimal.NewFromInt(5)

// AnalyticsSnapshot summarises a student's results over time.
type AnalyticsSnapshot struct {
	AverageScore    decimal.Decimal `json:"average_score"`
	BestUnit        *ScoredUnit     `json:"best_unit"`
	WorstUnit       *ScoredUnit     `json:"worst_unit"`
	StrugglingUnits []ScoredUnit    `json:"struggling_units"`
	UnitsAtRisk     int             `json:"units_at_risk"`
	Trend           Trend           `json:"trend"`
}

// Analyze describes units taken in creation order. Units without a usable
// score are ignored.
func (e *Engine) Analyze(units []ScoredUnit) AnalyticsSnapshot {
	ordered := scoredOnly(units)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	snap := AnalyticsSnapshot{
		AverageScore:    decimal.Zero.Round(2),
		StrugglingUnits: []ScoredUnit{},
		Trend:           TrendStable,
	}
	if len(ordered) == 0 {
		return snap
	}

	best, worst := 0, 0
	sum := 0
	for i, u := range ordered {
		score := *u.Score
		sum += score
		if score > *ordered[best].Score {
			best = i
		}
		if score < *ordered[worst].Score {
			worst = i
		}
		if score < StrugglingBelow {
			snap.StrugglingUnits = append(snap.StrugglingUnits, u)
		}
		if score < AtRiskBelow {
			snap.UnitsAtRisk++
		}
	}

	bestUnit, worstUnit := ordered[best], ordered[worst]
	snap.BestUnit = &bestUnit
	snap.WorstUnit = &worstUnit
	snap.AverageScore = round2(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(ordered)))))
	snap.Trend = trendOf(ordered)
	return snap
}

func trendOf(ordered []ScoredUnit) Trend {
	if len(ordered) <= 2 {
		return TrendStable
	}

	// Windows overlap when fewer than six units exist.
	earlier := meanScore(ordered[:trendWindow])
	recent := meanScore(ordered[len(ordered)-trendWindow:])

	diff := recent.Sub(earlier)
	switch {
	case diff.GreaterThan(trendMargin):
		return TrendImproving
	case diff.LessThan(trendMargin.Neg()):
		return TrendDeclining
	default:
		return TrendStable
	}
}

func meanScore(units []ScoredUnit) decimal.Decimal {
	sum := 0
	for _, u := range units {
		sum += *u.Score
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(units))))
}

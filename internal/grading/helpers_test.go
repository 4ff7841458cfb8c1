package grading

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var baseTime = time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

func scoreOf(v int) *int {
	return &v
}

// unitAt builds a unit created i hours after baseTime.
func unitAt(i int, code string, credits, score int) ScoredUnit {
	return ScoredUnit{
		UnitCode:    code,
		UnitName:    code + " name",
		CreditUnits: credits,
		Score:       scoreOf(score),
		CreatedAt:   baseTime.Add(time.Duration(i) * time.Hour),
	}
}

// unitsFromScores builds units with 3 credits each, in creation order.
func unitsFromScores(scores ...int) []ScoredUnit {
	units := make([]ScoredUnit, 0, len(scores))
	for i, s := range scores {
		units = append(units, unitAt(i, "U"+string(rune('A'+i)), 3, s))
	}
	return units
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

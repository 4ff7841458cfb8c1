package grading

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordOf(points, credits int) AggregateRecord {
	rec := AggregateRecord{
		TotalPoints:      decimal.NewFromInt(int64(points)),
		TotalCreditUnits: credits,
	}
	if credits > 0 {
		rec.GPA = round2(rec.TotalPoints.Div(decimal.NewFromInt(int64(credits))))
	}
	return rec
}

func TestProject(t *testing.T) {
	tests := []struct {
		name       string
		weight     int
		current    AggregateRecord
		target     int64
		remaining  int
		required   string
		achievable bool
		message    string
	}{
		{
			name:       "reachable with an ordinary average",
			current:    recordOf(760, 11),
			target:     70,
			remaining:  2,
			required:   "71.67",
			achievable: true,
			message:    "Average 71.7% needed in 2 remaining units.",
		},
		{
			name:       "heavier nominal weight",
			weight:     4,
			current:    recordOf(760, 11),
			target:     70,
			remaining:  2,
			required:   "71.25",
			achievable: true,
			message:    "Average 71.3% needed in 2 remaining units.",
		},
		{
			name:       "not achievable is clamped to 100",
			current:    recordOf(1200, 30),
			target:     70,
			remaining:  1,
			required:   "100",
			achievable: false,
			message:    "Target GPA of 70% is NOT achievable even with 100% in remaining units.",
		},
		{
			name:       "exactly 100 is still achievable",
			current:    ZeroRecord(),
			target:     100,
			remaining:  1,
			required:   "100",
			achievable: true,
			message:    "Excellent performance needed: average 100.0% in 1 remaining units.",
		},
		{
			name:       "excellent tier",
			current:    ZeroRecord(),
			target:     95,
			remaining:  4,
			required:   "95",
			achievable: true,
			message:    "Excellent performance needed: average 95.0% in 4 remaining units.",
		},
		{
			name:       "good tier",
			current:    ZeroRecord(),
			target:     80,
			remaining:  4,
			required:   "80",
			achievable: true,
			message:    "Good performance needed: average 80.0% in 4 remaining units.",
		},
		{
			name:       "already secured is clamped to 0",
			current:    recordOf(2700, 30),
			target:     50,
			remaining:  1,
			required:   "0",
			achievable: true,
			message:    "Average 0.0% needed in 1 remaining units.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(DefaultScale(), tt.weight)

			res := engine.Project(tt.current, decimal.NewFromInt(tt.target), tt.remaining)

			require.NotNil(t, res.RequiredAverage)
			assertDecimal(t, tt.required, *res.RequiredAverage)
			assert.Equal(t, tt.achievable, res.IsAchievable)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.remaining, res.RemainingUnits)
			assert.Equal(t, engine.NominalCreditWeight(), res.NominalCreditWeight)
			assert.True(t, tt.current.GPA.Equal(res.CurrentGPA))
		})
	}
}

func TestProjectWithoutRemainingUnits(t *testing.T) {
	engine := NewEngine(DefaultScale(), 0)
	current := recordOf(760, 11)

	for _, remaining := range []int{0, -3} {
		res := engine.Project(current, decimal.NewFromInt(70), remaining)

		assert.Nil(t, res.RequiredAverage)
		assert.Equal(t, NoRemainingUnitsMessage, res.Message)
		assert.False(t, res.IsAchievable)
	}

	res := engine.Project(current, decimal.NewFromInt(60), 0)
	assert.True(t, res.IsAchievable)
}

func TestProjectBoundsHold(t *testing.T) {
	engine := NewEngine(DefaultScale(), 0)
	records := []AggregateRecord{
		ZeroRecord(),
		recordOf(760, 11),
		recordOf(1200, 30),
		recordOf(2850, 30),
	}

	for _, rec := range records {
		for _, target := range []int64{40, 50, 60, 70, 85, 100} {
			for remaining := 1; remaining <= 20; remaining++ {
				res := engine.Project(rec, decimal.NewFromInt(target), remaining)

				require.NotNil(t, res.RequiredAverage)
				req := *res.RequiredAverage
				assert.True(t, req.GreaterThanOrEqual(decimal.Zero), "required %s", req)
				assert.True(t, req.LessThanOrEqual(hundred), "required %s", req)
				assert.True(t, req.Equal(req.Round(2)), "required %s", req)
				if !res.IsAchievable {
					assert.True(t, req.Equal(hundred))
				}
			}
		}
	}
}

func TestProjectTargets(t *testing.T) {
	engine := NewEngine(DefaultScale(), 0)

	results := engine.ProjectTargets(recordOf(760, 11), DefaultTargets(), 2)

	require.Len(t, results, 3)
	assert.Equal(t, "First Class Honours", results[0].TargetName)
	assertDecimal(t, "71.67", *results[0].RequiredAverage)
	assert.Equal(t, "Second Class (Upper)", results[1].TargetName)
	assertDecimal(t, "43.33", *results[1].RequiredAverage) // (60*17 - 760) / 6
	assert.Equal(t, "Second Class (Lower)", results[2].TargetName)
	assertDecimal(t, "15", *results[2].RequiredAverage)
	for _, r := range results {
		assert.True(t, r.IsAchievable)
	}
}

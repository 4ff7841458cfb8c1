package grading

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NoRemainingUnitsMessage is the projection message when nothing is left to take.
const NoRemainingUnitsMessage = "No remaining units to complete."

var (
	hundred        = decimal.NewFromInt(100)
	excellentFloor = decimal.NewFromInt(90)
	goodFloor      = decimal.NewFromInt(75)
)

// Target is a named GPA a student can aim for.
type Target struct {
	Name string          `json:"name"`
	GPA  decimal.Decimal `json:"gpa"`
}

// DefaultTargets are the honours levels shown on the graduation planner.
func DefaultTargets() []Target {
	return []Target{
		{Name: "First Class Honours", GPA: decimal.NewFromInt(70)},
		{Name: "Second Class (Upper)", GPA: decimal.NewFromInt(60)},
		{Name: "Second Class (Lower)", GPA: decimal.NewFromInt(50)},
	}
}

// ProjectionResult is the average needed in the remaining units to reach a
// target GPA. RequiredAverage is nil when no units remain.
type ProjectionResult struct {
	TargetName          string           `json:"target_name,omitempty"`
	RequiredAverage     *decimal.Decimal `json:"required_average"`
	TargetGPA           decimal.Decimal  `json:"target_gpa"`
	CurrentGPA          decimal.Decimal  `json:"current_gpa"`
	IsAchievable        bool             `json:"is_achievable"`
	Message             string           `json:"message"`
	RemainingUnits      int              `json:"remaining_units"`
	NominalCreditWeight int              `json:"nominal_credit_weight"`
}

// Project computes the average score needed across remainingUnits future units,
// each assumed to carry the engine's nominal credit weight, for the overall
// weighted average to reach target. Points use the same score × credits
// convention as Aggregate.
func (e *Engine) Project(current AggregateRecord, target decimal.Decimal, remainingUnits int) ProjectionResult {
	res := ProjectionResult{
		TargetGPA:           target,
		CurrentGPA:          current.GPA,
		RemainingUnits:      remainingUnits,
		NominalCreditWeight: e.nominalCreditWeight,
	}

	if remainingUnits <= 0 {
		res.IsAchievable = current.GPA.GreaterThanOrEqual(target)
		res.Message = NoRemainingUnitsMessage
		return res
	}

	futureCredits := decimal.NewFromInt(int64(remainingUnits) * int64(e.nominalCreditWeight))
	totalCredits := decimal.NewFromInt(int64(current.TotalCreditUnits)).Add(futureCredits)

	targetPoints := target.Mul(totalCredits)
	requiredPoints := targetPoints.Sub(current.TotalPoints)
	raw := requiredPoints.Div(futureCredits)

	required := round2(clamp(raw, decimal.Zero, hundred))
	res.RequiredAverage = &required
	res.IsAchievable = raw.LessThanOrEqual(hundred)
	res.Message = projectionMessage(raw, required, target, remainingUnits)
	return res
}

// ProjectTargets runs Project for each target and labels the results.
func (e *Engine) ProjectTargets(current AggregateRecord, targets []Target, remainingUnits int) []ProjectionResult {
	out := make([]ProjectionResult, 0, len(targets))
	for _, t := range targets {
		p := e.Project(current, t.GPA, remainingUnits)
		p.TargetName = t.Name
		out = append(out, p)
	}
	return out
}

func projectionMessage(raw, required, target decimal.Decimal, remainingUnits int) string {
	switch {
	case raw.GreaterThan(hundred):
		return fmt.Sprintf("Target GPA of %s%% is NOT achievable even with 100%% in remaining units.", target.String())
	case required.GreaterThanOrEqual(excellentFloor):
		return fmt.Sprintf("Excellent performance needed: average %s%% in %d remaining units.", required.StringFixed(1), remainingUnits)
	case required.GreaterThanOrEqual(goodFloor):
		return fmt.Sprintf("Good performance needed: average %s%% in %d remaining units.", required.StringFixed(1), remainingUnits)
	default:
		return fmt.Sprintf("Average %s%% needed in %d remaining units.", required.StringFixed(1), remainingUnits)
	}
}

func clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

package grading

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// NoGradesHonorsLevel labels the record of a student with no usable scores.
const NoGradesHonorsLevel = "No grades recorded yet"

// ErrMalformedUnit is the fault reported when a scored unit cannot be weighted.
var ErrMalformedUnit = errors.New("malformed unit")

// AggregateRecord is a student's weighted mean average and its inputs.
type AggregateRecord struct {
	GPA              decimal.Decimal `json:"gpa"`
	TotalPoints      decimal.Decimal `json:"total_points"`
	TotalCreditUnits int             `json:"total_credit_units"`
	UnitsCompleted   int             `json:"units_completed"`
	FailedUnits      int             `json:"failed_units"`
	HonorsLevel      string          `json:"honors_level"`
}

// OutcomeStatus tells a record computed from data apart from a fallback.
type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeEmpty    OutcomeStatus = "empty"
	OutcomeDegraded OutcomeStatus = "degraded"
)

// Outcome is the result of Aggregate. Record is always well formed; on a
// degraded outcome it is the zero-state record with an "Error:" honours level
// and Fault holds the cause.
type Outcome struct {
	Status OutcomeStatus   `json:"status"`
	Record AggregateRecord `json:"record"`
	Fault  error           `json:"-"`
}

// Degraded reports whether the record is a fallback for a computation fault.
func (o Outcome) Degraded() bool {
	return o.Status == OutcomeDegraded
}

// ZeroRecord is the record of a student without usable scores.
func ZeroRecord() AggregateRecord {
	return AggregateRecord{
		GPA:         decimal.Zero.Round(2),
		TotalPoints: decimal.Zero.Round(2),
		HonorsLevel: NoGradesHonorsLevel,
	}
}

// Aggregate computes the weighted mean average of units. Units without a score
// in 0..100 are skipped. Aggregate never panics: a fault produces a degraded
// outcome instead.
func (e *Engine) Aggregate(units []ScoredUnit) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = degraded(fmt.Errorf("aggregate: %v", r))
		}
	}()

	var (
		totalPoints  int64
		totalCredits int
		included     int
		failed       int
	)

	for _, u := range units {
		if !u.Scored() {
			continue
		}
		if u.CreditUnits < MinCreditUnits {
			return degraded(fmt.Errorf("%w: %s has %d credit units", ErrMalformedUnit, u.UnitCode, u.CreditUnits))
		}

		totalPoints += int64(*u.Score) * int64(u.CreditUnits)
		totalCredits += u.CreditUnits
		included++

		if e.scale.IsFailing(e.scale.Classify(*u.Score).Grade) {
			failed++
		}
	}

	if included == 0 {
		return Outcome{Status: OutcomeEmpty, Record: ZeroRecord()}
	}

	points := decimal.NewFromInt(totalPoints)
	gpa := round2(points.Div(decimal.NewFromInt(int64(totalCredits))))

	return Outcome{
		Status: OutcomeOK,
		Record: AggregateRecord{
			GPA:              gpa,
			TotalPoints:      round2(points),
			TotalCreditUnits: totalCredits,
			UnitsCompleted:   included - failed,
			FailedUnits:      failed,
			HonorsLevel:      e.scale.HonorsFor(gpa),
		},
	}
}

func degraded(fault error) Outcome {
	rec := ZeroRecord()
	rec.HonorsLevel = "Error: " + fault.Error()
	return Outcome{Status: OutcomeDegraded, Record: rec, Fault: fault}
}

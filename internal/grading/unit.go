package grading

import (
	"errors"
	"fmt"
	"time"
)

// Credit unit limits for a unit.
const (
	MinCreditUnits = 1
	MaxCreditUnits = 10
)

// Unit validation errors.
var (
	ErrUnitCode    = errors.New("unit code is required")
	ErrCreditUnits = errors.New("credit units must be between 1 and 10")
	ErrScoreRange  = errors.New("score must be between 0 and 100")
)

// ScoredUnit is one unit a student sat together with the score obtained.
// Score is nil when no score has been recorded.
type ScoredUnit struct {
	UnitCode    string    `json:"unit_code"`
	UnitName    string    `json:"unit_name"`
	CreditUnits int       `json:"credit_units"`
	Score       *int      `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewScoredUnit builds a validated ScoredUnit.
func NewScoredUnit(code, name string, creditUnits, score int, createdAt time.Time) (ScoredUnit, error) {
	u := ScoredUnit{
		UnitCode:    code,
		UnitName:    name,
		CreditUnits: creditUnits,
		Score:       &score,
		CreatedAt:   createdAt,
	}
	if err := u.Validate(); err != nil {
		return ScoredUnit{}, err
	}
	return u, nil
}

// Validate checks the unit against the limits enforced on new records.
// Records read back from storage may predate these limits; the engine
// tolerates them instead of calling Validate.
func (u ScoredUnit) Validate() error {
	if u.UnitCode == "" {
		return ErrUnitCode
	}
	if u.CreditUnits < MinCreditUnits || u.CreditUnits > MaxCreditUnits {
		return fmt.Errorf("%w: %s has %d", ErrCreditUnits, u.UnitCode, u.CreditUnits)
	}
	if u.Score != nil && !validScore(*u.Score) {
		return fmt.Errorf("%w: %s has %d", ErrScoreRange, u.UnitCode, *u.Score)
	}
	return nil
}

// Scored reports whether the unit carries a usable score.
func (u ScoredUnit) Scored() bool {
	return u.Score != nil && validScore(*u.Score)
}

// Points is score × credit units, or 0 when the unit is not scored.
func (u ScoredUnit) Points() int {
	if !u.Scored() {
		return 0
	}
	return *u.Score * u.CreditUnits
}

func validScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// scoredOnly returns the units with a usable score, preserving order.
func scoredOnly(units []ScoredUnit) []ScoredUnit {
	out := make([]ScoredUnit, 0, len(units))
	for _, u := range units {
		if u.Scored() {
			out = append(out, u)
		}
	}
	return out
}

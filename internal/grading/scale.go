package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Grade is a letter grade on the honours scale.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

// Score limits accepted by the engine.
const (
	MinScore = 0
	MaxScore = 100
)

// Boundary is one row of a grading scale: scores in [Min, Max] earn Grade.
type Boundary struct {
	Grade Grade  `json:"grade"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Label string `json:"label"`
}

// GradeResult is the classification of a single score.
type GradeResult struct {
	Grade       Grade  `json:"grade"`
	HonorsLabel string `json:"honors_label"`
}

// Scale validation errors.
var (
	ErrEmptyScale      = errors.New("grading scale has no boundaries")
	ErrBoundaryRange   = errors.New("boundary outside 0..100 or min above max")
	ErrBoundaryOverlap = errors.New("boundaries overlap")
	ErrBoundaryGap     = errors.New("boundaries do not cover every score in 0..100")
	ErrBoundaryLabel   = errors.New("boundary grade and label are required")
	ErrDuplicateGrade  = errors.New("grade appears more than once")
)

// Scale is an immutable grading table. The zero value is not usable; build one
// with DefaultScale, NewScale or ParseScale.
type Scale struct {
	bounds []Boundary // sorted by Min descending
}

// DefaultScale returns the honours classification used by the university.
func DefaultScale() Scale {
	s, _ := NewScale(
		Boundary{Grade: GradeA, Min: 70, Max: 100, Label: "First Class Honours"},
		Boundary{Grade: GradeB, Min: 60, Max: 69, Label: "Second Class Honours (Upper Division)"},
		Boundary{Grade: GradeC, Min: 50, Max: 59, Label: "Second Class Honours (Lower Division)"},
		Boundary{Grade: GradeD, Min: 40, Max: 49, Label: "Pass"},
		Boundary{Grade: GradeE, Min: 0, Max: 39, Label: "Fail"},
	)
	return s
}

// NewScale validates the boundaries and returns a Scale. The table must cover
// 0..100 exactly once.
func NewScale(bounds ...Boundary) (Scale, error) {
	if len(bounds) == 0 {
		return Scale{}, ErrEmptyScale
	}

	sorted := make([]Boundary, len(bounds))
	copy(sorted, bounds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })

	seen := make(map[Grade]bool, len(sorted))
	for _, b := range sorted {
		if b.Grade == "" || b.Label == "" {
			return Scale{}, ErrBoundaryLabel
		}
		if seen[b.Grade] {
			return Scale{}, fmt.Errorf("%w: %s", ErrDuplicateGrade, b.Grade)
		}
		seen[b.Grade] = true
		if b.Min < MinScore || b.Max > MaxScore || b.Min > b.Max {
			return Scale{}, fmt.Errorf("%w: %s %d-%d", ErrBoundaryRange, b.Grade, b.Min, b.Max)
		}
	}

	if sorted[0].Max != MaxScore || sorted[len(sorted)-1].Min != MinScore {
		return Scale{}, ErrBoundaryGap
	}
	for i := 1; i < len(sorted); i++ {
		upper, lower := sorted[i-1], sorted[i]
		switch {
		case lower.Max >= upper.Min:
			return Scale{}, fmt.Errorf("%w: %s and %s", ErrBoundaryOverlap, upper.Grade, lower.Grade)
		case lower.Max+1 != upper.Min:
			return Scale{}, fmt.Errorf("%w: between %s and %s", ErrBoundaryGap, lower.Grade, upper.Grade)
		}
	}

	return Scale{bounds: sorted}, nil
}

// ParseScale decodes a JSON array of boundaries and validates it.
func ParseScale(data []byte) (Scale, error) {
	var bounds []Boundary
	if err := json.Unmarshal(data, &bounds); err != nil {
		return Scale{}, fmt.Errorf("decode grading scale: %w", err)
	}
	return NewScale(bounds...)
}

// MarshalJSON encodes the scale as its boundary rows, highest first.
func (s Scale) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.bounds)
}

// Boundaries returns a copy of the rows, highest first.
func (s Scale) Boundaries() []Boundary {
	out := make([]Boundary, len(s.bounds))
	copy(out, s.bounds)
	return out
}

// Grades lists the grades of the scale, highest first.
func (s Scale) Grades() []Grade {
	out := make([]Grade, 0, len(s.bounds))
	for _, b := range s.bounds {
		out = append(out, b.Grade)
	}
	return out
}

// Classify maps a score to its grade and honours label. Scores no row matches
// fall to the lowest tier.
func (s Scale) Classify(score int) GradeResult {
	for _, b := range s.bounds {
		if score >= b.Min && score <= b.Max {
			return GradeResult{Grade: b.Grade, HonorsLabel: b.Label}
		}
	}
	return s.lowest()
}

// HonorsFor labels an aggregate GPA. Rows act as lower bounds so fractional
// averages such as 69.5 stay in the B band.
func (s Scale) HonorsFor(gpa decimal.Decimal) string {
	for _, b := range s.bounds {
		if gpa.GreaterThanOrEqual(decimal.NewFromInt(int64(b.Min))) {
			return b.Label
		}
	}
	return s.lowest().HonorsLabel
}

// IsFailing reports whether g is the scale's bottom grade.
func (s Scale) IsFailing(g Grade) bool {
	return g == s.lowest().Grade
}

func (s Scale) lowest() GradeResult {
	if len(s.bounds) == 0 {
		return GradeResult{Grade: GradeE, HonorsLabel: "Fail"}
	}
	last := s.bounds[len(s.bounds)-1]
	return GradeResult{Grade: last.Grade, HonorsLabel: last.Label}
}

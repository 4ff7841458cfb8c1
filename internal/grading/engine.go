// Package grading computes weighted mean averages, honours classifications,
// graduation projections and grade analytics from a student's scored units.
//
// Every Engine method is a pure function of its arguments: the engine holds no
// mutable state, performs no I/O and never caches, so repeated calls with the
// same input return identical output.
package grading

import "github.com/shopspring/decimal"

// DefaultNominalCreditWeight is the credit weight assumed for each unit a
// student has yet to take.
const DefaultNominalCreditWeight = 3

// Engine bundles the grading scale and projection settings.
type Engine struct {
	scale               Scale
	nominalCreditWeight int
}

// NewEngine creates an Engine. A non-positive nominalCreditWeight falls back
// to DefaultNominalCreditWeight.
func NewEngine(scale Scale, nominalCreditWeight int) *Engine {
	if nominalCreditWeight < 1 {
		nominalCreditWeight = DefaultNominalCreditWeight
	}
	if len(scale.bounds) == 0 {
		scale = DefaultScale()
	}
	return &Engine{scale: scale, nominalCreditWeight: nominalCreditWeight}
}

// Scale returns the engine's grading scale.
func (e *Engine) Scale() Scale {
	return e.scale
}

// NominalCreditWeight returns the credit weight assumed per remaining unit.
func (e *Engine) NominalCreditWeight() int {
	return e.nominalCreditWeight
}

// Classify maps a score to a grade and honours label.
func (e *Engine) Classify(score int) GradeResult {
	return e.scale.Classify(score)
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

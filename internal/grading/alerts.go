package grading

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AlertKind identifies the rule that raised an alert.
type AlertKind string

const (
	AlertLowGrade               AlertKind = "low_grade"
	AlertApproachingFirstClass  AlertKind = "approaching_first_class"
	AlertApproachingSecondUpper AlertKind = "approaching_second_upper"
)

// AlertLevel is how prominently an alert should be shown.
type AlertLevel string

const (
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelInfo    AlertLevel = "info"
)

// Alert is an advisory notice about a student's standing.
type Alert struct {
	Kind    AlertKind        `json:"kind"`
	Level   AlertLevel       `json:"level"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Count   int              `json:"count,omitempty"`
	Gap     *decimal.Decimal `json:"gap,omitempty"`
}

// approachWindow raises an alert when the GPA sits in [floor, ceiling).
type approachWindow struct {
	kind    AlertKind
	floor   decimal.Decimal
	ceiling decimal.Decimal
	title   string
	label   string
}

var approachWindows = []approachWindow{
	{
		kind:    AlertApproachingFirstClass,
		floor:   decimal.NewFromInt(68),
		ceiling: decimal.NewFromInt(70),
		title:   "Close to First Class",
		label:   "First Class Honours",
	},
	{
		kind:    AlertApproachingSecondUpper,
		floor:   decimal.NewFromInt(58),
		ceiling: decimal.NewFromInt(60),
		title:   "Close to Second Class Upper",
		label:   "Second Class Honours (Upper Division)",
	},
}

// Evaluate checks units and their aggregate against the alert rules. At most
// one threshold-approach alert is raised.
func (e *Engine) Evaluate(units []ScoredUnit, record AggregateRecord) []Alert {
	alerts := []Alert{}

	low := 0
	for _, u := range units {
		if u.Scored() && *u.Score < StrugglingBelow {
			low++
		}
	}
	if low > 0 {
		alerts = append(alerts, Alert{
			Kind:    AlertLowGrade,
			Level:   AlertLevelWarning,
			Title:   "Low grades",
			Message: fmt.Sprintf("You have %d unit(s) with a score below %d%%.", low, StrugglingBelow),
			Count:   low,
		})
	}

	for _, w := range approachWindows {
		if record.GPA.GreaterThanOrEqual(w.floor) && record.GPA.LessThan(w.ceiling) {
			gap := round2(w.ceiling.Sub(record.GPA))
			alerts = append(alerts, Alert{
				Kind:    w.kind,
				Level:   AlertLevelInfo,
				Title:   w.title,
				Message: fmt.Sprintf("You are %s points away from %s.", gap.StringFixed(2), w.label),
				Gap:     &gap,
			})
			break
		}
	}

	return alerts
}

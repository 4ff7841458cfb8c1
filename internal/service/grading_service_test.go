package service

import (
	"testing"
	"time"

	"github.com/stemsi/wma-backend/internal/grading"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func resultRow(code string, credits, score, yearID, day int) model.ResultDetail {
	at := day0.AddDate(0, 0, day)
	return model.ResultDetail{
		Result: model.Result{
			StudentID: 1,
			Score:     score,
			CreatedAt: at,
			UpdatedAt: at,
		},
		UnitCode:       code,
		UnitName:       code + " name",
		CreditUnits:    credits,
		AcademicYearID: yearID,
	}
}

func sampleRows() []model.ResultDetail {
	return []model.ResultDetail{
		resultRow("MIT201", 3, 72, 1, 0),
		resultRow("MIT203", 4, 45, 1, 1),
		resultRow("MIT206", 4, 85, 2, 2),
	}
}

func TestBuildRecalculation(t *testing.T) {
	engine := grading.NewEngine(grading.DefaultScale(), 0)
	called := false

	rc := buildRecalculation(engine, 1, sampleRows(), func(grading.Outcome, int) { called = true })

	assert.False(t, called)
	assert.Equal(t, 1, rc.StudentID)
	assert.Equal(t, grading.OutcomeOK, rc.Overall.Status)
	assert.Equal(t, "66.91", rc.Overall.Record.GPA.StringFixed(2)) // 736 / 11
	assert.Equal(t, 11, rc.Overall.Record.TotalCreditUnits)

	require.Len(t, rc.PerYear, 2)
	assert.Equal(t, "56.57", rc.PerYear[1].Record.GPA.StringFixed(2))
	assert.Equal(t, "85.00", rc.PerYear[2].Record.GPA.StringFixed(2))

	require.Len(t, rc.Alerts, 1)
	assert.Equal(t, grading.AlertLowGrade, rc.Alerts[0].Kind)
	assert.Equal(t, 1, rc.Alerts[0].Count)
}

func TestBuildRecalculationDegraded(t *testing.T) {
	engine := grading.NewEngine(grading.DefaultScale(), 0)
	rows := append(sampleRows(), resultRow("MIT299", 0, 60, 2, 3))

	var units int
	rc := buildRecalculation(engine, 1, rows, func(out grading.Outcome, n int) {
		assert.True(t, out.Degraded())
		units = n
	})

	assert.True(t, rc.Overall.Degraded())
	assert.Equal(t, 4, units)
	assert.True(t, rc.PerYear[2].Degraded())
	assert.False(t, rc.PerYear[1].Degraded())
	assert.Contains(t, rc.Overall.Record.HonorsLevel, "Error:")
}

func TestRecentEntries(t *testing.T) {
	engine := grading.NewEngine(grading.DefaultScale(), 0)
	units := toScoredUnits(sampleRows())
	units = append(units, grading.ScoredUnit{UnitCode: "MIT207", CreditUnits: 3, CreatedAt: day0.AddDate(0, 0, 5)})

	entries := recentEntries(engine, units, 2)

	require.Len(t, entries, 2)
	assert.Equal(t, "MIT206", entries[0].Code)
	assert.Equal(t, 340, entries[0].Points)
	assert.Equal(t, "MIT203", entries[1].Code)
	assert.Equal(t, grading.GradeD, entries[1].Grade)
}

func TestBuildDashboard(t *testing.T) {
	engine := grading.NewEngine(grading.DefaultScale(), 0)
	units := toScoredUnits(sampleRows())
	out := engine.Aggregate(units)

	d := buildDashboard(engine, units, Standing{Status: out.Status, Record: out.Record}, 4)

	assert.Equal(t, grading.OutcomeOK, d.Standing.Status)
	assert.Len(t, d.RecentResults, 3)
	assert.Len(t, d.Projections, len(grading.DefaultTargets()))
	for _, p := range d.Projections {
		assert.Equal(t, 4, p.RemainingUnits)
	}
	assert.Equal(t, 2, d.Distribution[grading.GradeA])
	assert.Equal(t, 1, d.Distribution[grading.GradeD])
	require.Len(t, d.Alerts, 1)
}

func TestResultsNewerThan(t *testing.T) {
	rows := sampleRows()

	assert.True(t, resultsNewerThan(rows, day0))
	assert.False(t, resultsNewerThan(rows, day0.AddDate(0, 0, 2)))
	assert.False(t, resultsNewerThan(nil, day0))
}

func TestSnapshotCurrent(t *testing.T) {
	rows := sampleRows()

	tests := []struct {
		name   string
		stored model.AnalyticsRecord
		rows   []model.ResultDetail
		want   bool
	}{
		{
			name:   "unchanged",
			stored: model.AnalyticsRecord{ResultCount: 3, CalculatedAt: day0.AddDate(0, 0, 3)},
			rows:   rows,
			want:   true,
		},
		{
			name:   "result updated after snapshot",
			stored: model.AnalyticsRecord{ResultCount: 3, CalculatedAt: day0.AddDate(0, 0, 1)},
			rows:   rows,
			want:   false,
		},
		{
			name:   "result deleted after snapshot",
			stored: model.AnalyticsRecord{ResultCount: 3, CalculatedAt: day0.AddDate(0, 0, 3)},
			rows:   rows[:2],
			want:   false,
		},
		{
			name:   "last result deleted",
			stored: model.AnalyticsRecord{ResultCount: 1, CalculatedAt: day0.AddDate(0, 0, 3)},
			rows:   nil,
			want:   false,
		},
		{
			name:   "snapshot from before the count was stored",
			stored: model.AnalyticsRecord{ResultCount: -1, CalculatedAt: day0.AddDate(0, 0, 3)},
			rows:   rows,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snapshotCurrent(&tt.stored, tt.rows))
		})
	}
}

func TestBuildRecalculationCountsResults(t *testing.T) {
	engine := grading.NewEngine(grading.DefaultScale(), 0)

	rc := buildRecalculation(engine, 1, sampleRows()[:1], func(grading.Outcome, int) {})

	assert.Equal(t, 1, rc.ResultCount)
	require.Len(t, rc.PerYear, 1)
	assert.Contains(t, rc.PerYear, 1)
}

func TestAlertNotifications(t *testing.T) {
	alerts := []grading.Alert{
		{Kind: grading.AlertLowGrade, Level: grading.AlertLevelWarning, Title: "Low grades", Message: "You have 1 unit(s) with a score below 50%."},
	}

	notifs := AlertNotifications(9, alerts)

	require.Len(t, notifs, 1)
	assert.Equal(t, model.Notification{
		StudentID: 9,
		Kind:      "low_grade",
		Level:     "warning",
		Title:     "Low grades",
		Message:   "You have 1 unit(s) with a score below 50%.",
	}, notifs[0])
	assert.Empty(t, AlertNotifications(9, nil))
}

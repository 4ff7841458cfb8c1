package grading

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	scale := DefaultScale()

	tests := []struct {
		score int
		grade Grade
		label string
	}{
		{score: 100, grade: GradeA, label: "First Class Honours"},
		{score: 70, grade: GradeA, label: "First Class Honours"},
		{score: 69, grade: GradeB, label: "Second Class Honours (Upper Division)"},
		{score: 60, grade: GradeB, label: "Second Class Honours (Upper Division)"},
		{score: 59, grade: GradeC, label: "Second Class Honours (Lower Division)"},
		{score: 50, grade: GradeC, label: "Second Class Honours (Lower Division)"},
		{score: 49, grade: GradeD, label: "Pass"},
		{score: 40, grade: GradeD, label: "Pass"},
		{score: 39, grade: GradeE, label: "Fail"},
		{score: 0, grade: GradeE, label: "Fail"},
		{score: 150, grade: GradeE, label: "Fail"},
		{score: -1, grade: GradeE, label: "Fail"},
	}
	for _, tt := range tests {
		got := scale.Classify(tt.score)
		assert.Equal(t, tt.grade, got.Grade, "score %d", tt.score)
		assert.Equal(t, tt.label, got.HonorsLabel, "score %d", tt.score)
	}
}

func TestNewScaleValidation(t *testing.T) {
	tests := []struct {
		name    string
		bounds  []Boundary
		wantErr error
	}{
		{name: "empty", wantErr: ErrEmptyScale},
		{
			name: "overlap",
			bounds: []Boundary{
				{Grade: "P", Min: 50, Max: 100, Label: "Pass"},
				{Grade: "F", Min: 0, Max: 50, Label: "Fail"},
			},
			wantErr: ErrBoundaryOverlap,
		},
		{
			name: "gap in the middle",
			bounds: []Boundary{
				{Grade: "P", Min: 50, Max: 100, Label: "Pass"},
				{Grade: "F", Min: 0, Max: 48, Label: "Fail"},
			},
			wantErr: ErrBoundaryGap,
		},
		{
			name: "top not covered",
			bounds: []Boundary{
				{Grade: "P", Min: 50, Max: 99, Label: "Pass"},
				{Grade: "F", Min: 0, Max: 49, Label: "Fail"},
			},
			wantErr: ErrBoundaryGap,
		},
		{
			name: "out of range",
			bounds: []Boundary{
				{Grade: "P", Min: 50, Max: 120, Label: "Pass"},
				{Grade: "F", Min: 0, Max: 49, Label: "Fail"},
			},
			wantErr: ErrBoundaryRange,
		},
		{
			name: "duplicate grade",
			bounds: []Boundary{
				{Grade: "P", Min: 50, Max: 100, Label: "Pass"},
				{Grade: "P", Min: 0, Max: 49, Label: "Fail"},
			},
			wantErr: ErrDuplicateGrade,
		},
		{
			name: "missing label",
			bounds: []Boundary{
				{Grade: "P", Min: 0, Max: 100},
			},
			wantErr: ErrBoundaryLabel,
		},
		{
			name: "unordered input is accepted",
			bounds: []Boundary{
				{Grade: "F", Min: 0, Max: 49, Label: "Fail"},
				{Grade: "P", Min: 50, Max: 100, Label: "Pass"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScale(tt.bounds...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCustomScale(t *testing.T) {
	scale, err := NewScale(
		Boundary{Grade: "F", Min: 0, Max: 49, Label: "Fail"},
		Boundary{Grade: "P", Min: 50, Max: 100, Label: "Pass"},
	)
	require.NoError(t, err)

	assert.Equal(t, []Grade{"P", "F"}, scale.Grades())
	assert.Equal(t, Grade("P"), scale.Classify(50).Grade)
	assert.Equal(t, Grade("F"), scale.Classify(49).Grade)
	assert.True(t, scale.IsFailing("F"))
	assert.False(t, scale.IsFailing("P"))
}

func TestParseScaleRoundTrip(t *testing.T) {
	raw, err := DefaultScale().MarshalJSON()
	require.NoError(t, err)

	parsed, err := ParseScale(raw)
	require.NoError(t, err)
	assert.Equal(t, DefaultScale().Boundaries(), parsed.Boundaries())

	_, err = ParseScale([]byte(`{"grade":"A"}`))
	assert.Error(t, err)

	_, err = ParseScale([]byte(`[{"grade":"A","min":0,"max":90,"label":"All"}]`))
	assert.ErrorIs(t, err, ErrBoundaryGap)
}

func TestHonorsFor(t *testing.T) {
	scale := DefaultScale()

	tests := []struct {
		gpa  string
		want string
	}{
		{gpa: "100", want: "First Class Honours"},
		{gpa: "70.00", want: "First Class Honours"},
		{gpa: "69.99", want: "Second Class Honours (Upper Division)"},
		{gpa: "60", want: "Second Class Honours (Upper Division)"},
		{gpa: "59.5", want: "Second Class Honours (Lower Division)"},
		{gpa: "40", want: "Pass"},
		{gpa: "39.99", want: "Fail"},
		{gpa: "0", want: "Fail"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scale.HonorsFor(decimal.RequireFromString(tt.gpa)), "gpa %s", tt.gpa)
	}
}

func TestBoundariesReturnsCopy(t *testing.T) {
	scale := DefaultScale()
	rows := scale.Boundaries()
	rows[0].Label = "Changed"

	assert.Equal(t, "First Class Honours", scale.Classify(90).HonorsLabel)
}

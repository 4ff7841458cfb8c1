package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript(t *testing.T) {
	engine := NewEngine(DefaultScale(), 0)
	units := []ScoredUnit{
		unitAt(0, "MIT203", 4, 58),
		unitAt(1, "MIT201", 3, 72),
		{UnitCode: "MIT202", CreditUnits: 4},
		unitAt(3, "MIT204", 3, 35),
	}

	entries := engine.Transcript(units)

	require.Len(t, entries, 3)
	assert.Equal(t, []string{"MIT201", "MIT203", "MIT204"}, []string{entries[0].Code, entries[1].Code, entries[2].Code})
	assert.Equal(t, TranscriptEntry{
		Code:        "MIT201",
		Name:        "MIT201 name",
		CreditUnits: 3,
		Score:       72,
		Grade:       GradeA,
		Points:      216,
		HonorsLabel: "First Class Honours",
	}, entries[0])
	assert.Equal(t, GradeC, entries[1].Grade)
	assert.Equal(t, 232, entries[1].Points)
	assert.Equal(t, GradeE, entries[2].Grade)
}

func TestTranscriptEmpty(t *testing.T) {
	entries := NewEngine(DefaultScale(), 0).Transcript(nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestDistribution(t *testing.T) {
	engine := NewEngine(DefaultScale(), 0)

	dist := engine.Distribution(unitsFromScores(85, 72, 64, 38, 150))

	assert.Equal(t, map[Grade]int{
		GradeA: 2,
		GradeB: 1,
		GradeC: 0,
		GradeD: 0,
		GradeE: 1,
	}, dist)
}

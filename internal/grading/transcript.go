package grading

import "sort"

// TranscriptEntry is one line of a student's transcript.
type TranscriptEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	CreditUnits int    `json:"credit_units"`
	Score       int    `json:"score"`
	Grade       Grade  `json:"grade"`
	Points      int    `json:"points"`
	HonorsLabel string `json:"honors_level"`
}

// Transcript lists the scored units ordered by unit code.
func (e *Engine) Transcript(units []ScoredUnit) []TranscriptEntry {
	scored := scoredOnly(units)
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].UnitCode < scored[j].UnitCode })

	entries := make([]TranscriptEntry, 0, len(scored))
	for _, u := range scored {
		g := e.scale.Classify(*u.Score)
		entries = append(entries, TranscriptEntry{
			Code:        u.UnitCode,
			Name:        u.UnitName,
			CreditUnits: u.CreditUnits,
			Score:       *u.Score,
			Grade:       g.Grade,
			Points:      u.Points(),
			HonorsLabel: g.HonorsLabel,
		})
	}
	return entries
}

// Distribution counts scored units per grade. Every grade of the scale is
// present, with zero when unused.
func (e *Engine) Distribution(units []ScoredUnit) map[Grade]int {
	dist := make(map[Grade]int, len(e.scale.bounds))
	for _, g := range e.scale.Grades() {
		dist[g] = 0
	}
	for _, u := range units {
		if !u.Scored() {
			continue
		}
		dist[e.scale.Classify(*u.Score).Grade]++
	}
	return dist
}

// Package domain contains pure, dependency-free domain models and types
// for the pairwise ranking pipeline.
package domain

// Outcome represents one decided pairwise comparison between two projects.
// It is immutable once parsed: ingestion validates every field and the
// rest of the pipeline only reads it.
type Outcome struct {
	// ProjectA is the first participant as it appeared in the source row.
	ProjectA string `json:"project_a"`

	// ProjectB is the second participant as it appeared in the source row.
	ProjectB string `json:"project_b"`

	// Winner is the resolved winner name. It is always equal to either
	// ProjectA or ProjectB; ingestion rejects rows where it is not.
	Winner string `json:"winner"`
}

// Loser returns the participant that did not win the comparison.
func (o Outcome) Loser() string {
	if o.Winner == o.ProjectA {
		return o.ProjectB
	}
	return o.ProjectA
}

// Record tracks a project's aggregate win/loss performance.
// Total counts every appearance, win or loss; Wins counts victories only,
// so Wins <= Total always holds.
type Record struct {
	// Wins is the number of comparisons this project won.
	Wins int `json:"wins"`

	// Total is the number of comparisons this project appeared in.
	Total int `json:"total"`
}

// WinRate returns the fraction of appearances this project won,
// or 0 when the project never appeared.
func (r Record) WinRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Total)
}

// RankedEntry pairs a project with its fitted Bradley-Terry strength.
// A slice of RankedEntry sorted by the Ranker is strictly non-increasing
// by Score with lexicographic name order breaking exact ties.
type RankedEntry struct {
	// Project is the ranked project's name.
	Project string `json:"project"`

	// Score is the normalized Bradley-Terry strength. Scores across a
	// fitted ranking sum to 1 and every score is strictly positive.
	Score float64 `json:"score"`
}

// ReportRow is one emitted leaderboard line: the ranked project together
// with its fitted strength, win/loss record, and awarded allocation.
type ReportRow struct {
	// Rank is the 1-based position in the ranking.
	Rank int `json:"rank"`

	// Project is the project's name.
	Project string `json:"project"`

	// Score is the normalized Bradley-Terry strength.
	Score float64 `json:"score"`

	// RatingLog is the natural log of Score, a conventional log-rating.
	RatingLog float64 `json:"rating_log"`

	// Record is the project's win/loss record.
	Record Record `json:"record"`

	// Allocation is the integer grant awarded to this project.
	Allocation int64 `json:"allocation"`
}

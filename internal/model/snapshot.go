package model

import "time"

// SnapshotTTL is how long a saved progress snapshot stays resumable.
const SnapshotTTL = 7 * 24 * time.Hour

// ProgressSnapshot is the persisted resume point for one session.
// Overwritten after every accepted answer and every back navigation,
// deleted on successful submission.
type ProgressSnapshot struct {
	Step           int       `json:"step"`
	Answers        AnswerMap `json:"answers"`
	CatalogVersion string    `json:"catalogVersion,omitempty"`
	SavedAt        int64     `json:"ts"` // epoch millis
}

// Expired reports whether the snapshot is past its TTL at now.
func (s *ProgressSnapshot) Expired(now time.Time) bool {
	saved := time.UnixMilli(s.SavedAt)
	return now.Sub(saved) > SnapshotTTL
}

// Resumable reports whether the snapshot can seed a session against the
// given catalog version: fresh enough, version-matched, and carrying at
// least one answer.
func (s *ProgressSnapshot) Resumable(now time.Time, catalogVersion string) bool {
	if s == nil || len(s.Answers) == 0 {
		return false
	}
	if s.Expired(now) {
		return false
	}
	return s.CatalogVersion == catalogVersion
}

// CompletedAnswers is the sanitized answer set cached after a successful
// submission for read-only display. Never mutated afterward.
type CompletedAnswers struct {
	SurveyID    string    `json:"surveyId"`
	Answers     AnswerMap `json:"answers"`
	CompletedAt time.Time `json:"completedAt"`
}

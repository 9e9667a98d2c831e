package model

import "time"

// SubmitPayload is the JSON body POSTed to the primary submission
// endpoint. Any 2xx response is success; the body is not interpreted.
type SubmitPayload struct {
	SurveyID    string    `json:"surveyId"`
	Answers     AnswerMap `json:"answers"`
	SubmittedAt string    `json:"submittedAt"` // ISO-8601 UTC, taken at send time
	Email       string    `json:"email,omitempty"`
}

// Submission is a stored survey submission (the hosted intake side).
type Submission struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	SurveyID    string    `json:"surveyId" bson:"surveyId"`
	Answers     AnswerMap `json:"answers" bson:"answers"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
	ReceivedAt  time.Time `json:"receivedAt" bson:"receivedAt"`
}

// SurveyCount is one row of the admin dashboard aggregation.
type SurveyCount struct {
	SurveyID string `json:"surveyId" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// ProgressBeacon is the fire-and-forget telemetry notification sent on
// milestone crossings. Purely observational.
type ProgressBeacon struct {
	SurveyID       string `json:"surveyId"`
	SessionID      string `json:"sessionId"`
	Milestone      int    `json:"milestone"`
	Step           int    `json:"step"`
	AnsweredCount  int    `json:"answeredCount"`
	TotalQuestions int    `json:"totalQuestions"`
}

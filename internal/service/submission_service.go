package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"memberportal/internal/event"
	"memberportal/internal/model"
	"memberportal/internal/repository"
)

var ErrEmptySubmission = errors.New("submission carries no answers")

// SubmissionService is the hosted side of the primary submission
// endpoint: it stores incoming answer sets and notifies downstream
// consumers over the event exchange.
type SubmissionService struct {
	submissionRepo repository.SubmissionRepo
	publisher      *event.Publisher
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(submissionRepo repository.SubmissionRepo, publisher *event.Publisher) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		publisher:      publisher,
	}
}

// Accept validates the payload shape, stores it, and publishes a
// survey.completed event. Event failures are logged and swallowed: the
// store is the source of truth, the exchange is a courtesy.
func (s *SubmissionService) Accept(ctx context.Context, surveyID string, payload *model.SubmitPayload) (string, error) {
	if len(payload.Answers) == 0 {
		return "", ErrEmptySubmission
	}

	submittedAt, err := time.Parse(time.RFC3339, payload.SubmittedAt)
	if err != nil {
		return "", fmt.Errorf("invalid submittedAt timestamp: %w", err)
	}

	sub := &model.Submission{
		SurveyID:    surveyID,
		Answers:     payload.Answers,
		Email:       payload.Email,
		SubmittedAt: submittedAt,
	}
	id, err := s.submissionRepo.Create(ctx, sub)
	if err != nil {
		return "", fmt.Errorf("failed to store submission: %w", err)
	}

	if err := s.publisher.Publish(event.SurveyCompleted, map[string]interface{}{
		"submissionId": id,
		"surveyId":     surveyID,
		"email":        payload.Email,
	}); err != nil {
		log.Printf("[Submission] event publish failed: %v", err)
	}
	return id, nil
}

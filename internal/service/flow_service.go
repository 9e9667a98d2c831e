package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"memberportal/internal/cache"
	"memberportal/internal/catalog"
	"memberportal/internal/event"
	"memberportal/internal/flow"
	"memberportal/internal/model"
)

var (
	ErrSurveyNotFound  = errors.New("survey not found")
	ErrNoActiveSession = errors.New("no active session")
)

// EventPublisher emits portal lifecycle events. *event.Publisher
// satisfies it, including as a typed nil when AMQP is not configured.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// FlowService owns the live flow controllers, one per member and survey.
// The engine itself is single-driver by design; the service only guards
// the transport layer's concurrent access to the same session.
type FlowService struct {
	registry  *catalog.Registry
	progress  cache.ProgressCache
	completed cache.CompletedCache
	submitter flow.Submitter
	telemetry *TelemetryService
	events    EventPublisher

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	ctrl *flow.Controller
}

// NewFlowService creates a new flow service
func NewFlowService(registry *catalog.Registry, progress cache.ProgressCache, completed cache.CompletedCache, submitter flow.Submitter, telemetry *TelemetryService, events EventPublisher) *FlowService {
	return &FlowService{
		registry:  registry,
		progress:  progress,
		completed: completed,
		submitter: submitter,
		telemetry: telemetry,
		events:    events,
		sessions:  make(map[string]*sessionEntry),
	}
}

// Surveys lists the available catalog ids.
func (s *FlowService) Surveys() []string {
	return s.registry.IDs()
}

// Catalog returns the catalog for a survey id, or nil.
func (s *FlowService) Catalog(surveyID string) *model.Catalog {
	return s.registry.Get(surveyID)
}

// OpenSession starts or resumes the member's session for a survey and
// returns the replayed transcript plus the current question.
func (s *FlowService) OpenSession(ctx context.Context, surveyID, memberID, email string) (*flow.StepView, error) {
	cat := s.registry.Get(surveyID)
	if cat == nil {
		return nil, ErrSurveyNotFound
	}

	entry := &sessionEntry{
		ctrl: flow.NewController(cat, s.progress, s.completed, s.submitter, memberID, email),
	}

	s.mu.Lock()
	s.sessions[s.key(surveyID, memberID)] = entry
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	view, err := entry.ctrl.Start(ctx)
	if err != nil {
		return nil, err
	}
	s.notifyFailure(surveyID, memberID, view)
	return view, nil
}

// Answer submits the current question's answer and advances the session.
func (s *FlowService) Answer(ctx context.Context, surveyID, memberID string, value model.AnswerValue) (*flow.StepView, error) {
	entry, err := s.session(surveyID, memberID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	view, err := entry.ctrl.SubmitAnswer(ctx, value)
	if err != nil {
		return nil, err
	}
	s.notifyFailure(surveyID, memberID, view)
	s.emitBeacons(surveyID, entry.ctrl, view)
	return view, nil
}

// Back navigates one step backward.
func (s *FlowService) Back(ctx context.Context, surveyID, memberID string) (*flow.StepView, error) {
	entry, err := s.session(surveyID, memberID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.ctrl.GoBack(ctx)
}

// Completed returns the sanitized cached answers after a successful
// submission, or nil.
func (s *FlowService) Completed(ctx context.Context, surveyID, memberID string) (*model.CompletedAnswers, error) {
	if s.registry.Get(surveyID) == nil {
		return nil, ErrSurveyNotFound
	}
	return s.completed.Get(ctx, surveyID, memberID)
}

func (s *FlowService) key(surveyID, memberID string) string {
	return surveyID + "/" + memberID
}

func (s *FlowService) session(surveyID, memberID string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[s.key(surveyID, memberID)]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return entry, nil
}

// notifyFailure publishes a survey.failed event when a transition lands
// the session in submission_failed. Publish errors are logged and
// swallowed, matching the intake side.
func (s *FlowService) notifyFailure(surveyID, memberID string, view *flow.StepView) {
	if s.events == nil || view.Status != flow.StatusSubmissionFailed {
		return
	}
	if err := s.events.Publish(event.SurveyFailed, map[string]interface{}{
		"surveyId":  surveyID,
		"memberId":  memberID,
		"sessionId": view.SessionID,
	}); err != nil {
		log.Printf("[Flow] event publish failed: %v", err)
	}
}

// emitBeacons sends one telemetry beacon per milestone crossed by the
// last transition. Sends leave the request path so a slow beacon
// endpoint never holds the session lock.
func (s *FlowService) emitBeacons(surveyID string, ctrl *flow.Controller, view *flow.StepView) {
	if s.telemetry == nil || len(view.Milestones) == 0 {
		return
	}
	cat := s.registry.Get(surveyID)
	answered := len(ctrl.Answers())
	total := flow.EffectiveQuestionCount(cat, ctrl.Answers())
	sessionID := ctrl.SessionID()
	step := ctrl.StepIndex()
	for _, milestone := range view.Milestones {
		beacon := &model.ProgressBeacon{
			SurveyID:       surveyID,
			SessionID:      sessionID,
			Milestone:      milestone,
			Step:           step,
			AnsweredCount:  answered,
			TotalQuestions: total,
		}
		go s.telemetry.SendBeacon(context.Background(), beacon)
	}
}

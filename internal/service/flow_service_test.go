package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"memberportal/internal/catalog"
	"memberportal/internal/event"
	"memberportal/internal/flow"
	"memberportal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProgress struct {
	snaps map[string]*model.ProgressSnapshot
}

func newStubProgress() *stubProgress {
	return &stubProgress{snaps: make(map[string]*model.ProgressSnapshot)}
}

func (s *stubProgress) SaveSnapshot(ctx context.Context, surveyID, memberID string, snap *model.ProgressSnapshot) error {
	s.snaps[surveyID+"/"+memberID] = snap
	return nil
}

func (s *stubProgress) GetSnapshot(ctx context.Context, surveyID, memberID string) (*model.ProgressSnapshot, error) {
	return s.snaps[surveyID+"/"+memberID], nil
}

func (s *stubProgress) DeleteSnapshot(ctx context.Context, surveyID, memberID string) error {
	delete(s.snaps, surveyID+"/"+memberID)
	return nil
}

type stubCompleted struct {
	recs map[string]*model.CompletedAnswers
}

func newStubCompleted() *stubCompleted {
	return &stubCompleted{recs: make(map[string]*model.CompletedAnswers)}
}

func (s *stubCompleted) Save(ctx context.Context, surveyID, memberID string, rec *model.CompletedAnswers) error {
	s.recs[surveyID+"/"+memberID] = rec
	return nil
}

func (s *stubCompleted) Get(ctx context.Context, surveyID, memberID string) (*model.CompletedAnswers, error) {
	return s.recs[surveyID+"/"+memberID], nil
}

type stubSubmitter struct {
	failures int
	calls    int
}

func (s *stubSubmitter) Submit(ctx context.Context, catalog *model.Catalog, answers model.AnswerMap, email string) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("endpoint unavailable")
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.events...)
}

func testRegistry(t *testing.T, body string) *catalog.Registry {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cat.yaml"), []byte(body), 0o644))
	reg, err := catalog.LoadDir(dir)
	require.NoError(t, err)
	return reg
}

const oneQuestionCatalog = `
id: gate
version: "1"
questions:
  - id: q1
    kind: text
    prompt: Use AI?
`

const twoQuestionCatalog = `
id: pair
version: "1"
questions:
  - id: q1
    kind: text
    prompt: One
  - id: q2
    kind: text
    prompt: Two
`

func TestAnswerPublishesFailureEvent(t *testing.T) {
	publisher := &recordingPublisher{}
	submitter := &stubSubmitter{failures: 1}
	svc := NewFlowService(testRegistry(t, oneQuestionCatalog), newStubProgress(), newStubCompleted(), submitter, nil, publisher)
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, "gate", "m1", "")
	require.NoError(t, err)

	view, err := svc.Answer(ctx, "gate", "m1", model.TextAnswer("no"))
	require.NoError(t, err)
	require.Equal(t, flow.StatusSubmissionFailed, view.Status)
	assert.Equal(t, []string{event.SurveyFailed}, publisher.all())
}

func TestReopenAfterFailurePublishesAgainThenStops(t *testing.T) {
	publisher := &recordingPublisher{}
	submitter := &stubSubmitter{failures: 2}
	progress := newStubProgress()
	svc := NewFlowService(testRegistry(t, oneQuestionCatalog), progress, newStubCompleted(), submitter, nil, publisher)
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, "gate", "m1", "")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, "gate", "m1", model.TextAnswer("no"))
	require.NoError(t, err)

	// Reopening replays the kept snapshot and re-attempts submission,
	// which fails once more before succeeding on the third open.
	view, err := svc.OpenSession(ctx, "gate", "m1", "")
	require.NoError(t, err)
	require.Equal(t, flow.StatusSubmissionFailed, view.Status)
	assert.Equal(t, []string{event.SurveyFailed, event.SurveyFailed}, publisher.all())

	view, err = svc.OpenSession(ctx, "gate", "m1", "")
	require.NoError(t, err)
	require.Equal(t, flow.StatusComplete, view.Status)
	assert.Len(t, publisher.all(), 2)
}

func TestSuccessfulFlowPublishesNothing(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewFlowService(testRegistry(t, oneQuestionCatalog), newStubProgress(), newStubCompleted(), &stubSubmitter{}, nil, publisher)
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, "gate", "m1", "")
	require.NoError(t, err)
	view, err := svc.Answer(ctx, "gate", "m1", model.TextAnswer("yes"))
	require.NoError(t, err)
	require.Equal(t, flow.StatusComplete, view.Status)

	// survey.completed belongs to the hosted intake, not the flow side.
	assert.Empty(t, publisher.all())
}

func TestBeaconsCarryOneMilestoneEach(t *testing.T) {
	received := make(chan model.ProgressBeacon, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b model.ProgressBeacon
		if err := json.NewDecoder(r.Body).Decode(&b); err == nil {
			received <- b
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	telemetry := NewTelemetryService(srv.URL)
	svc := NewFlowService(testRegistry(t, twoQuestionCatalog), newStubProgress(), newStubCompleted(), &stubSubmitter{}, telemetry, nil)
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, "pair", "m1", "")
	require.NoError(t, err)

	// Answering one of two questions jumps progress to 50, crossing the
	// 25 and 50 thresholds in one transition.
	view, err := svc.Answer(ctx, "pair", "m1", model.TextAnswer("a"))
	require.NoError(t, err)
	require.Equal(t, []int{25, 50}, view.Milestones)

	got := make(map[int]model.ProgressBeacon)
	for i := 0; i < 2; i++ {
		select {
		case b := <-received:
			got[b.Milestone] = b
		case <-time.After(2 * time.Second):
			t.Fatalf("beacon %d never arrived", i+1)
		}
	}

	require.Contains(t, got, 25)
	require.Contains(t, got, 50)
	for _, b := range got {
		assert.Equal(t, "pair", b.SurveyID)
		assert.Equal(t, 1, b.AnsweredCount)
		assert.Equal(t, 2, b.TotalQuestions)
	}
}

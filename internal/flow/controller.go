package flow

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"memberportal/internal/cache"
	"memberportal/internal/model"

	"github.com/google/uuid"
)

// Status is the state of a conversational survey session
type Status string

const (
	StatusAwaitingAnswer   Status = "awaiting_answer"
	StatusTransitioning    Status = "transitioning"
	StatusSubmitting       Status = "submitting"
	StatusComplete         Status = "complete"
	StatusSubmissionFailed Status = "submission_failed"
)

var (
	ErrAnswerRequired = errors.New("an answer is required for this question")
	ErrNotAwaiting    = errors.New("no question is awaiting an answer")
	ErrCannotGoBack   = errors.New("no earlier question to return to")
)

// Submitter commits a finished answer set to the configured endpoints.
type Submitter interface {
	Submit(ctx context.Context, catalog *model.Catalog, answers model.AnswerMap, email string) error
}

// milestoneThresholds are the progress percentages announced once per
// session via the telemetry beacon.
var milestoneThresholds = []int{25, 50, 75, 90}

// EntryKind tags a transcript entry
type EntryKind string

const (
	EntrySection EntryKind = "section"
	EntryPrompt  EntryKind = "prompt"
	EntryAnswer  EntryKind = "answer"
)

// TranscriptEntry is one line of the reconstructed conversation history.
type TranscriptEntry struct {
	Index      int                `json:"index"`
	Kind       EntryKind          `json:"kind"`
	QuestionID string             `json:"questionId,omitempty"`
	Text       string             `json:"text,omitempty"`
	Value      *model.AnswerValue `json:"value,omitempty"`
}

// StepView is what a transport renders after each transition.
type StepView struct {
	SessionID  string                    `json:"sessionId"`
	Status     Status                    `json:"status"`
	Question   *model.QuestionDefinition `json:"question,omitempty"`
	Prefilled  *model.AnswerValue        `json:"prefilled,omitempty"`
	Transcript []TranscriptEntry         `json:"transcript"`
	Progress   int                       `json:"progress"`
	Milestones []int                     `json:"milestones,omitempty"`
}

// Controller owns one member's walk through one catalog: it advances
// honoring skips and auto-fills, records answers, persists resume
// snapshots, supports single-step back navigation, and triggers
// submission when the catalog is exhausted. Not safe for concurrent use;
// a session has exactly one driver.
type Controller struct {
	catalog   *model.Catalog
	progress  cache.ProgressCache
	completed cache.CompletedCache
	submitter Submitter

	sessionID string
	memberID  string
	email     string

	status     Status
	index      int
	answers    model.AnswerMap
	transcript []TranscriptEntry

	// fired milestone thresholds, scoped to this session so independent
	// sessions in one process never interfere
	fired map[int]bool
}

// NewController creates a controller for one member's session over a
// catalog. Call Start before anything else.
func NewController(catalog *model.Catalog, progress cache.ProgressCache, completed cache.CompletedCache, submitter Submitter, memberID, email string) *Controller {
	return &Controller{
		catalog:   catalog,
		progress:  progress,
		completed: completed,
		submitter: submitter,
		sessionID: "s_" + uuid.New().String()[:8],
		memberID:  memberID,
		email:     email,
		answers:   make(model.AnswerMap),
		fired:     make(map[int]bool),
	}
}

// SessionID returns the identifier minted for this session.
func (c *Controller) SessionID() string { return c.sessionID }

// Status returns the current state of the session.
func (c *Controller) Status() Status { return c.status }

// Answers returns the answer map recorded so far.
func (c *Controller) Answers() model.AnswerMap { return c.answers }

// StepIndex returns the current catalog index.
func (c *Controller) StepIndex() int { return c.index }

// Start computes the initial state: resume from a non-expired snapshot by
// replaying the catalog against its answers, or begin fresh at the first
// promptable question. A catalog with nothing to prompt submits
// immediately.
func (c *Controller) Start(ctx context.Context) (*StepView, error) {
	snap, err := c.progress.GetSnapshot(ctx, c.catalog.ID, c.memberID)
	if err != nil {
		log.Printf("[Flow] failed to load snapshot for %s/%s: %v", c.catalog.ID, c.memberID, err)
		snap = nil
	}
	if snap.Resumable(time.Now(), c.catalog.Version) {
		c.answers = snap.Answers.Clone()
		c.replay(snap.Step)
	} else {
		if snap != nil {
			// Stale, version-mismatched or empty: discard and start over.
			if err := c.progress.DeleteSnapshot(ctx, c.catalog.ID, c.memberID); err != nil {
				log.Printf("[Flow] failed to drop stale snapshot: %v", err)
			}
		}
		c.index = 0
		c.advance()
	}

	if c.index >= len(c.catalog.Questions) {
		c.finish(ctx)
	} else {
		c.status = StatusAwaitingAnswer
	}
	return c.view(nil), nil
}

// SubmitAnswer records the answer for the current question and advances.
// Required questions reject empty values and the session stays put.
func (c *Controller) SubmitAnswer(ctx context.Context, value model.AnswerValue) (*StepView, error) {
	if c.status != StatusAwaitingAnswer {
		return nil, ErrNotAwaiting
	}
	q := &c.catalog.Questions[c.index]
	if q.Required && value.IsEmpty() {
		return nil, ErrAnswerRequired
	}

	c.status = StatusTransitioning
	c.answers[q.ID] = value
	c.transcript = append(c.transcript, TranscriptEntry{
		Index:      c.index,
		Kind:       EntryAnswer,
		QuestionID: q.ID,
		Value:      &value,
	})

	// Answer recorded before the snapshot, snapshot before the next
	// question. Snapshot failures (quota, storage down) are swallowed:
	// the in-memory state stays authoritative, only resumability after a
	// reload is lost.
	c.saveSnapshot(ctx, c.index+1)

	c.index++
	c.advance()

	crossed := c.crossMilestones()

	if c.index >= len(c.catalog.Questions) {
		c.finish(ctx)
	} else {
		c.status = StatusAwaitingAnswer
	}
	return c.view(crossed), nil
}

// GoBack re-enters the most recent promptable question before the
// current one, with the previous answer pre-filled as an editable
// default. The old answer is kept until the step is re-submitted.
func (c *Controller) GoBack(ctx context.Context) (*StepView, error) {
	if c.status != StatusAwaitingAnswer {
		return nil, ErrNotAwaiting
	}
	target := -1
	for i := c.index - 1; i >= 0; i-- {
		q := &c.catalog.Questions[i]
		if q.IsSection() || ShouldSkip(c.catalog, i, c.answers) {
			continue
		}
		if q.AutoAnswer {
			if _, ok := c.answers[q.ID]; ok {
				continue
			}
		}
		target = i
		break
	}
	if target < 0 {
		return nil, ErrCannotGoBack
	}

	// Drop conversation history recorded after the target question, then
	// re-open it.
	kept := c.transcript[:0]
	for _, e := range c.transcript {
		if e.Index < target {
			kept = append(kept, e)
		}
	}
	c.transcript = kept
	q := &c.catalog.Questions[target]
	c.transcript = append(c.transcript, TranscriptEntry{
		Index:      target,
		Kind:       EntryPrompt,
		QuestionID: q.ID,
		Text:       q.Prompt,
	})

	c.index = target
	c.saveSnapshot(ctx, target)

	view := c.view(nil)
	if prev, ok := c.answers[q.ID]; ok {
		view.Prefilled = &prev
	}
	return view, nil
}

// Progress returns the completion percentage, clamped to 100. Answers
// restored for questions that later became skip-eligible can push the
// raw ratio past the effective count.
func (c *Controller) Progress() int {
	total := EffectiveQuestionCount(c.catalog, c.answers)
	if total == 0 {
		return 100
	}
	pct := int(math.Round(100 * float64(len(c.answers)) / float64(total)))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// CompletedView returns the cached sanitized answers, or nil before a
// successful submission.
func (c *Controller) CompletedView(ctx context.Context) (*model.CompletedAnswers, error) {
	return c.completed.Get(ctx, c.catalog.ID, c.memberID)
}

// replay silently reconstructs the conversation up to the saved step,
// re-evaluating skip conditions against the snapshot's answers (the
// snapshot already encodes all prior branching), then resumes at the
// first promptable question at or after it.
func (c *Controller) replay(step int) {
	c.index = 0
	for c.index < len(c.catalog.Questions) && c.index < step {
		q := &c.catalog.Questions[c.index]
		if q.IsSection() {
			if !ShouldSkip(c.catalog, c.index, c.answers) {
				c.transcript = append(c.transcript, TranscriptEntry{
					Index: c.index,
					Kind:  EntrySection,
					Text:  q.Title,
				})
			}
			c.index++
			continue
		}
		if ShouldSkip(c.catalog, c.index, c.answers) {
			c.index++
			continue
		}
		ans, ok := c.answers[q.ID]
		if q.AutoAnswer && ok {
			c.index++
			continue
		}
		if !ok {
			break
		}
		c.transcript = append(c.transcript,
			TranscriptEntry{Index: c.index, Kind: EntryPrompt, QuestionID: q.ID, Text: q.Prompt},
			TranscriptEntry{Index: c.index, Kind: EntryAnswer, QuestionID: q.ID, Value: &ans},
		)
		c.index++
	}
	c.advance()
}

// advance moves the index forward past section headers (emitting them),
// skip-eligible questions, and auto-answered questions, stopping on the
// first question that needs a prompt. Skip conditions are evaluated
// against the current answers.
func (c *Controller) advance() {
	for c.index < len(c.catalog.Questions) {
		q := &c.catalog.Questions[c.index]
		if q.IsSection() {
			if !ShouldSkip(c.catalog, c.index, c.answers) {
				c.transcript = append(c.transcript, TranscriptEntry{
					Index: c.index,
					Kind:  EntrySection,
					Text:  q.Title,
				})
			}
			c.index++
			continue
		}
		if ShouldSkip(c.catalog, c.index, c.answers) {
			c.index++
			continue
		}
		if q.AutoAnswer {
			if _, ok := c.answers[q.ID]; ok {
				c.index++
				continue
			}
		}
		c.transcript = append(c.transcript, TranscriptEntry{
			Index:      c.index,
			Kind:       EntryPrompt,
			QuestionID: q.ID,
			Text:       q.Prompt,
		})
		return
	}
}

// finish runs the submission pipeline. Success clears the snapshot and
// caches the sanitized answers; failure keeps both answers and snapshot
// so a reload retries via the resume path.
func (c *Controller) finish(ctx context.Context) {
	c.status = StatusSubmitting
	if err := c.submitter.Submit(ctx, c.catalog, c.answers, c.email); err != nil {
		log.Printf("[Flow] submission failed for %s/%s: %v", c.catalog.ID, c.memberID, err)
		c.status = StatusSubmissionFailed
		return
	}
	if err := c.progress.DeleteSnapshot(ctx, c.catalog.ID, c.memberID); err != nil {
		log.Printf("[Flow] failed to clear snapshot after submit: %v", err)
	}
	rec := &model.CompletedAnswers{
		SurveyID:    c.catalog.ID,
		Answers:     c.sanitizedAnswers(),
		CompletedAt: time.Now().UTC(),
	}
	if err := c.completed.Save(ctx, c.catalog.ID, c.memberID, rec); err != nil {
		log.Printf("[Flow] failed to cache completed answers: %v", err)
	}
	c.status = StatusComplete
}

// sanitizedAnswers strips answers whose questions are marked PII.
func (c *Controller) sanitizedAnswers() model.AnswerMap {
	out := make(model.AnswerMap, len(c.answers))
	for id, v := range c.answers {
		if q := c.catalog.QuestionByID(id); q != nil && q.PII {
			continue
		}
		out[id] = v
	}
	return out
}

func (c *Controller) saveSnapshot(ctx context.Context, step int) {
	snap := &model.ProgressSnapshot{
		Step:           step,
		Answers:        c.answers.Clone(),
		CatalogVersion: c.catalog.Version,
		SavedAt:        time.Now().UnixMilli(),
	}
	if err := c.progress.SaveSnapshot(ctx, c.catalog.ID, c.memberID, snap); err != nil {
		log.Printf("[Flow] failed to save snapshot for %s/%s: %v", c.catalog.ID, c.memberID, err)
	}
}

// crossMilestones marks newly reached progress thresholds and returns
// them, so the caller can emit telemetry beacons exactly once each.
func (c *Controller) crossMilestones() []int {
	pct := c.Progress()
	var crossed []int
	for _, t := range milestoneThresholds {
		if pct >= t && !c.fired[t] {
			c.fired[t] = true
			crossed = append(crossed, t)
		}
	}
	return crossed
}

func (c *Controller) view(milestones []int) *StepView {
	v := &StepView{
		SessionID:  c.sessionID,
		Status:     c.status,
		Transcript: c.transcript,
		Progress:   c.Progress(),
		Milestones: milestones,
	}
	if c.status == StatusAwaitingAnswer && c.index < len(c.catalog.Questions) {
		v.Question = &c.catalog.Questions[c.index]
	}
	return v
}

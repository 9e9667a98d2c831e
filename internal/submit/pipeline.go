package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"memberportal/internal/flow"
	"memberportal/internal/model"
)

// Pipeline commits a finished answer set: an optional best-effort legacy
// form mirror, then the primary JSON endpoint with bounded retry. It
// performs the two outbound calls and nothing else; persistence is the
// flow controller's job.
type Pipeline struct {
	submitURL   string
	httpClient  *http.Client
	maxAttempts int
	backoffUnit time.Duration
}

// NewPipeline creates a submission pipeline targeting submitURL.
func NewPipeline(submitURL string) *Pipeline {
	return &Pipeline{
		submitURL: submitURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxAttempts: 3,
		backoffUnit: time.Second,
	}
}

// SetBackoffUnit overrides the base delay between retry attempts.
func (p *Pipeline) SetBackoffUnit(d time.Duration) {
	p.backoffUnit = d
}

// Submit transforms the answers into wire payloads and delivers them.
// The mirror call is fire-and-forget; the primary call retries up to the
// attempt bound with linearly increasing delay and returns the last
// error when exhausted.
func (p *Pipeline) Submit(ctx context.Context, catalog *model.Catalog, answers model.AnswerMap, email string) error {
	// Fan split answers out and drop separator noise before building
	// either payload.
	prepared := fanOut(catalog, answers)
	prepared = stripSeparators(catalog, prepared)

	if catalog.MirrorURL != "" {
		p.sendMirror(ctx, catalog, prepared)
	}

	if email == "" && catalog.EmailQuestionID != "" {
		if v, ok := prepared[catalog.EmailQuestionID]; ok {
			email = v.Text
		}
	}

	payload := &model.SubmitPayload{
		SurveyID:    catalog.ID,
		Answers:     prepared,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
		Email:       email,
	}
	return p.deliver(ctx, payload)
}

// fanOut applies every split rule: the source selection is intersected
// with each target's allowed set, preserving selection order, and stored
// under the target's output field id.
func fanOut(catalog *model.Catalog, answers model.AnswerMap) model.AnswerMap {
	out := answers.Clone()
	for _, rule := range catalog.SplitRules {
		src, ok := answers[rule.SourceQuestionID]
		if !ok || !src.IsList() {
			continue
		}
		for _, split := range rule.Splits {
			allowed := make(map[string]bool, len(split.AllowedValues))
			for _, v := range split.AllowedValues {
				allowed[v] = true
			}
			var picked []string
			for _, v := range src.List {
				if allowed[v] {
					picked = append(picked, v)
				}
			}
			out[split.OutputFieldID] = model.Selection(picked...)
		}
	}
	return out
}

// stripSeparators removes visual-only divider tokens from selections.
func stripSeparators(catalog *model.Catalog, answers model.AnswerMap) model.AnswerMap {
	if len(catalog.Separators) == 0 {
		return answers
	}
	noise := make(map[string]bool, len(catalog.Separators))
	for _, s := range catalog.Separators {
		noise[s] = true
	}
	out := answers.Clone()
	for id, v := range out {
		if !v.IsList() {
			continue
		}
		kept := make([]string, 0, len(v.List))
		for _, item := range v.List {
			if !noise[item] {
				kept = append(kept, item)
			}
		}
		out[id] = model.Selection(kept...)
	}
	return out
}

// sendMirror posts the URL-encoded legacy form body once. The mirror is
// a secondary channel: errors are logged, never retried, never surfaced.
func (p *Pipeline) sendMirror(ctx context.Context, catalog *model.Catalog, answers model.AnswerMap) {
	body := BuildMirrorBody(catalog, answers)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, catalog.MirrorURL, bytes.NewBufferString(body.Encode()))
	if err != nil {
		log.Printf("[Submit] mirror request build failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[Submit] mirror delivery failed: %v", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	log.Printf("[Submit] mirror delivered: status %d", resp.StatusCode)
}

// deliver posts the primary payload with bounded retry. Any non-2xx
// status and any transport error are retryable.
func (p *Pipeline) deliver(ctx context.Context, payload *model.SubmitPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := time.Duration(attempt-1) * p.backoffUnit
			log.Printf("[Submit] retry %d/%d for survey %s in %v", attempt, p.maxAttempts, payload.SurveyID, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.submitURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			log.Printf("[Submit] attempt %d failed for survey %s: %v", attempt, payload.SurveyID, err)
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Printf("[Submit] survey %s delivered on attempt %d", payload.SurveyID, attempt)
			return nil
		}
		lastErr = fmt.Errorf("submit endpoint returned %d", resp.StatusCode)
		log.Printf("[Submit] attempt %d for survey %s: %v", attempt, payload.SurveyID, lastErr)
	}
	return fmt.Errorf("max attempts exceeded: %w", lastErr)
}

var _ flow.Submitter = (*Pipeline)(nil)

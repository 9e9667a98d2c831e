package flow

import "memberportal/internal/model"

// evalCondition evaluates a skip condition against the answers so far.
// An unanswered referenced question means "not yet decided" and never
// triggers a skip, for either mode.
func evalCondition(cond *model.SkipCondition, answers model.AnswerMap) bool {
	ans, ok := answers[cond.QuestionID]
	if !ok {
		return false
	}
	switch cond.Mode {
	case model.SkipEquals:
		return ans.Matches(cond.Value)
	case model.SkipNotEquals:
		return !ans.Matches(cond.Value)
	}
	return false
}

// precedingSection returns the nearest section entry before index, or nil.
func precedingSection(catalog *model.Catalog, index int) *model.QuestionDefinition {
	for i := index - 1; i >= 0; i-- {
		if catalog.Questions[i].IsSection() {
			return &catalog.Questions[i]
		}
	}
	return nil
}

// ShouldSkip decides whether the catalog entry at index must be bypassed
// given the answers so far. A skip-eligible section cascades to every
// question until the next section, regardless of their own conditions.
func ShouldSkip(catalog *model.Catalog, index int, answers model.AnswerMap) bool {
	q := &catalog.Questions[index]
	if q.IsSection() {
		return q.Skip != nil && evalCondition(q.Skip, answers)
	}
	if sec := precedingSection(catalog, index); sec != nil && sec.Skip != nil {
		if evalCondition(sec.Skip, answers) {
			return true
		}
	}
	return q.Skip != nil && evalCondition(q.Skip, answers)
}

// EffectiveQuestionCount is the denominator for progress percentage: the
// number of questions that would actually be prompted given the answers
// so far. Must be recomputed whenever answers change, because branching
// changes which questions are reachable.
func EffectiveQuestionCount(catalog *model.Catalog, answers model.AnswerMap) int {
	n := 0
	for i := range catalog.Questions {
		q := &catalog.Questions[i]
		if q.IsSection() {
			continue
		}
		if ShouldSkip(catalog, i, answers) {
			continue
		}
		if q.AutoAnswer {
			if _, ok := answers[q.ID]; ok {
				continue
			}
		}
		n++
	}
	return n
}

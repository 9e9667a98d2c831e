package model

// QuestionKind defines how a catalog entry is presented
type QuestionKind string

const (
	KindSection      QuestionKind = "section"       // Header only, never answered
	KindText         QuestionKind = "text"          // Single-line free text
	KindTextarea     QuestionKind = "textarea"      // Multi-line free text
	KindSingleChoice QuestionKind = "single_choice" // One option
	KindMultiChoice  QuestionKind = "multi_choice"  // Zero or more options
	KindDropdown     QuestionKind = "dropdown"      // One option from a list
)

// SkipMode defines how a skip condition compares the referenced answer
type SkipMode string

const (
	SkipEquals    SkipMode = "equals"
	SkipNotEquals SkipMode = "not_equals"
)

// SkipCondition bypasses a question (or a whole section) based on an
// earlier answer. A missing referenced answer never triggers a skip.
type SkipCondition struct {
	QuestionID string   `json:"questionId" yaml:"questionId"`
	Mode       SkipMode `json:"mode" yaml:"mode"`
	Value      string   `json:"value" yaml:"value"`
}

// DeriveMode defines how a virtual entry value is computed from its
// source answer
type DeriveMode string

const (
	DeriveCopy             DeriveMode = "copy"
	DeriveFirstOfSelection DeriveMode = "first_of_selection"
	DeriveValueIfIncludes  DeriveMode = "value_if_includes"
)

// VirtualRule derives an extra legacy-form value from a question's answer.
// Token and Value are only used by value_if_includes.
type VirtualRule struct {
	OutputFieldID string     `json:"outputFieldId" yaml:"outputFieldId"`
	Mode          DeriveMode `json:"mode" yaml:"mode"`
	Token         string     `json:"token,omitempty" yaml:"token,omitempty"`
	Value         string     `json:"value,omitempty" yaml:"value,omitempty"`
}

// QuestionDefinition is one entry in a catalog. Section entries carry
// Title/Description only; every other kind is a promptable question.
type QuestionDefinition struct {
	ID          string       `json:"id" yaml:"id"`
	Kind        QuestionKind `json:"kind" yaml:"kind"`
	Title       string       `json:"title,omitempty" yaml:"title,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Prompt      string       `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []string     `json:"options,omitempty" yaml:"options,omitempty"`

	// OutputFieldID is the matching field in the legacy form mirror.
	OutputFieldID string `json:"outputFieldId,omitempty" yaml:"outputFieldId,omitempty"`

	// Skip on a section cascades to every following question until the
	// next section.
	Skip *SkipCondition `json:"skip,omitempty" yaml:"skip,omitempty"`

	// AutoAnswer bypasses the question silently when an answer for it
	// already exists (e.g. restored or pre-filled).
	AutoAnswer bool `json:"autoAnswer,omitempty" yaml:"autoAnswer,omitempty"`

	// PII marks answers that must never reach the completed-answer cache.
	PII bool `json:"pii,omitempty" yaml:"pii,omitempty"`

	VirtualRules []VirtualRule `json:"virtualRules,omitempty" yaml:"virtualRules,omitempty"`
}

// IsSection reports whether the entry is a header rather than a question.
func (q *QuestionDefinition) IsSection() bool {
	return q.Kind == KindSection
}

// SplitTarget is one output field of a split rule.
type SplitTarget struct {
	OutputFieldID string   `json:"outputFieldId" yaml:"outputFieldId"`
	AllowedValues []string `json:"allowedValues" yaml:"allowedValues"`
}

// SplitRule fans one multi-select answer out into several legacy output
// fields by intersecting the selection with each target's allowed set.
type SplitRule struct {
	SourceQuestionID string        `json:"sourceQuestionId" yaml:"sourceQuestionId"`
	Splits           []SplitTarget `json:"splits" yaml:"splits"`
}

// Catalog is the ordered, immutable question list for one survey.
// Version changes invalidate saved progress snapshots.
type Catalog struct {
	ID              string               `json:"id" yaml:"id"`
	Version         string               `json:"version" yaml:"version"`
	Title           string               `json:"title" yaml:"title"`
	MirrorURL       string               `json:"mirrorUrl,omitempty" yaml:"mirrorUrl,omitempty"`
	EmailQuestionID string               `json:"emailQuestionId,omitempty" yaml:"emailQuestionId,omitempty"`
	Separators      []string             `json:"separators,omitempty" yaml:"separators,omitempty"`
	Questions       []QuestionDefinition `json:"questions" yaml:"questions"`
	SplitRules      []SplitRule          `json:"splitRules,omitempty" yaml:"splitRules,omitempty"`
}

// QuestionByID returns the definition for id, or nil.
func (c *Catalog) QuestionByID(id string) *QuestionDefinition {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i]
		}
	}
	return nil
}

// SectionCount returns the number of section headers in the catalog.
func (c *Catalog) SectionCount() int {
	n := 0
	for i := range c.Questions {
		if c.Questions[i].IsSection() {
			n++
		}
	}
	return n
}

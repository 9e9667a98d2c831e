package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"memberportal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
id: dev-survey
version: "3"
title: Developer Survey
emailQuestionId: email
separators:
  - "——"
questions:
  - id: email
    kind: text
    prompt: Your email?
    outputFieldId: "1000001"
    autoAnswer: true
    pii: true
  - id: intro
    kind: section
    title: Background
  - id: lang
    kind: dropdown
    prompt: Primary language?
    required: true
    options: [Go, Rust, Python]
    outputFieldId: "1000002"
    skip:
      questionId: email
      mode: not_equals
      value: ""
  - id: benefits
    kind: multi_choice
    prompt: What improved?
    options: ["Speed", "——", "Quality"]
    virtualRules:
      - outputFieldId: "1000010"
        mode: value_if_includes
        token: Speed
        value: faster
splitRules:
  - sourceQuestionId: benefits
    splits:
      - outputFieldId: "2000001"
        allowedValues: [Speed]
`

func writeCatalog(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesFullCatalog(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), "dev.yaml", sampleCatalog)

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev-survey", cat.ID)
	assert.Equal(t, "3", cat.Version)
	assert.Equal(t, "email", cat.EmailQuestionID)
	assert.Equal(t, []string{"——"}, cat.Separators)
	require.Len(t, cat.Questions, 4)

	email := cat.QuestionByID("email")
	require.NotNil(t, email)
	assert.True(t, email.AutoAnswer)
	assert.True(t, email.PII)

	lang := cat.QuestionByID("lang")
	require.NotNil(t, lang)
	assert.Equal(t, model.KindDropdown, lang.Kind)
	assert.True(t, lang.Required)
	require.NotNil(t, lang.Skip)
	assert.Equal(t, model.SkipNotEquals, lang.Skip.Mode)

	benefits := cat.QuestionByID("benefits")
	require.NotNil(t, benefits)
	require.Len(t, benefits.VirtualRules, 1)
	assert.Equal(t, model.DeriveValueIfIncludes, benefits.VirtualRules[0].Mode)

	require.Len(t, cat.SplitRules, 1)
	assert.Equal(t, "benefits", cat.SplitRules[0].SourceQuestionID)
	assert.Equal(t, 1, cat.SectionCount())
}

func TestLoadRejectsMissingID(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), "bad.yaml", "title: No ID\nquestions: []\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog id is required")
}

func TestLoadRejectsDuplicateQuestionID(t *testing.T) {
	body := `
id: dup
questions:
  - id: q1
    kind: text
  - id: q1
    kind: text
`
	path := writeCatalog(t, t.TempDir(), "dup.yaml", body)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate question id "q1"`)
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	body := `
id: bad-kind
questions:
  - id: q1
    kind: slider
`
	path := writeCatalog(t, t.TempDir(), "kind.yaml", body)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestLoadRejectsUnknownSkipMode(t *testing.T) {
	body := `
id: bad-skip
questions:
  - id: q1
    kind: text
    skip:
      questionId: q0
      mode: greater_than
      value: "5"
`
	path := writeCatalog(t, t.TempDir(), "skip.yaml", body)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown skip mode")
}

func TestLoadAllowsDanglingSkipReference(t *testing.T) {
	// A skip pointing at a question that does not exist stays loadable;
	// it just never triggers at runtime.
	body := `
id: dangling
questions:
  - id: q1
    kind: text
    skip:
      questionId: ghost
      mode: equals
      value: "yes"
`
	path := writeCatalog(t, t.TempDir(), "dangling.yaml", body)
	_, err := Load(path)
	assert.NoError(t, err)
}

func TestLoadDirBuildsRegistry(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "a.yaml", "id: alpha\nquestions: []\n")
	writeCatalog(t, dir, "b.yml", "id: beta\nquestions: []\n")
	writeCatalog(t, dir, "notes.txt", "not a catalog")

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, reg.IDs())
	assert.NotNil(t, reg.Get("alpha"))
	assert.Nil(t, reg.Get("missing"))
}

func TestLoadDirRejectsDuplicateCatalogID(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "a.yaml", "id: same\nquestions: []\n")
	writeCatalog(t, dir, "b.yaml", "id: same\nquestions: []\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate catalog id "same"`)
}

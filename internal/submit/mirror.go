package submit

import (
	"fmt"
	"net/url"
	"strings"

	"memberportal/internal/flow"
	"memberportal/internal/model"
)

// Protocol marker the legacy form backend expects on every post.
const mirrorMarkerField = "fvv"

// BuildMirrorBody encodes the legacy form mirror payload. Every question
// with an output field contributes its value(s) as repeated entry fields;
// virtual entry rules contribute their derived values, concatenated when
// several rules target the same field. The pageHistory and marker fields
// are appended for backend compatibility.
func BuildMirrorBody(catalog *model.Catalog, answers model.AnswerMap) url.Values {
	values := url.Values{}

	for i := range catalog.Questions {
		q := &catalog.Questions[i]
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		if q.OutputFieldID != "" {
			for _, item := range ans.Strings() {
				values.Add(entryField(q.OutputFieldID), item)
			}
		}
		for _, rule := range q.VirtualRules {
			derived := flow.ResolveVirtual(rule, ans)
			if derived == nil {
				continue
			}
			for _, item := range derived.Strings() {
				values.Add(entryField(rule.OutputFieldID), item)
			}
		}
	}

	// Fanned-out split fields are keyed by output field id directly.
	for _, rule := range catalog.SplitRules {
		for _, split := range rule.Splits {
			if v, ok := answers[split.OutputFieldID]; ok {
				for _, item := range v.Strings() {
					values.Add(entryField(split.OutputFieldID), item)
				}
			}
		}
	}

	// Zero-based page index per section, e.g. "0,1,2".
	pages := catalog.SectionCount()
	if pages == 0 {
		pages = 1
	}
	history := make([]string, pages)
	for i := range history {
		history[i] = fmt.Sprintf("%d", i)
	}
	values.Set("pageHistory", strings.Join(history, ","))
	values.Set(mirrorMarkerField, "1")

	return values
}

func entryField(outputFieldID string) string {
	return "entry." + outputFieldID
}

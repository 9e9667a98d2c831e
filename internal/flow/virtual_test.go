package flow

import (
	"reflect"
	"testing"

	"memberportal/internal/model"
)

func TestResolveVirtualCopy(t *testing.T) {
	rule := model.VirtualRule{OutputFieldID: "f", Mode: model.DeriveCopy}

	got := ResolveVirtual(rule, model.TextAnswer("42"))
	if got == nil || got.Text != "42" {
		t.Fatalf("copy of %q = %v, want unchanged", "42", got)
	}

	sel := model.Selection("a", "b")
	got = ResolveVirtual(rule, sel)
	if got == nil || !reflect.DeepEqual(got.List, []string{"a", "b"}) {
		t.Fatalf("copy of selection = %v, want unchanged", got)
	}
}

func TestResolveVirtualFirstOfSelection(t *testing.T) {
	rule := model.VirtualRule{OutputFieldID: "f", Mode: model.DeriveFirstOfSelection}

	testCases := []struct {
		name   string
		answer model.AnswerValue
		want   *string
	}{
		{"first of two", model.Selection("A", "B"), strPtr("A")},
		{"empty selection", model.Selection(), nil},
		{"non-sequence answer", model.TextAnswer("A"), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveVirtual(rule, tc.answer)
			if tc.want == nil {
				if got != nil {
					t.Errorf("got %v, want nil", got)
				}
				return
			}
			if got == nil || got.Text != *tc.want {
				t.Errorf("got %v, want %q", got, *tc.want)
			}
		})
	}
}

func TestResolveVirtualValueIfIncludes(t *testing.T) {
	rule := model.VirtualRule{OutputFieldID: "f", Mode: model.DeriveValueIfIncludes, Token: "X", Value: "Y"}

	got := ResolveVirtual(rule, model.Selection("X", "Z"))
	if got == nil || !reflect.DeepEqual(got.List, []string{"Y"}) {
		t.Fatalf("got %v, want [Y]", got)
	}

	if got := ResolveVirtual(rule, model.Selection("Z")); got != nil {
		t.Fatalf("got %v, want nil for selection without token", got)
	}
	if got := ResolveVirtual(rule, model.TextAnswer("X")); got != nil {
		t.Fatalf("got %v, want nil for non-sequence answer", got)
	}
}

func TestMergeVirtualConcatenates(t *testing.T) {
	// Two rules feeding one output field must union, not overwrite.
	merged := MergeVirtual(model.Selection("realized"), model.Selection("wanted"))
	if !reflect.DeepEqual(merged.List, []string{"realized", "wanted"}) {
		t.Fatalf("merged = %v, want [realized wanted]", merged.List)
	}

	merged = MergeVirtual(model.TextAnswer("one"), model.TextAnswer("two"))
	if !reflect.DeepEqual(merged.List, []string{"one", "two"}) {
		t.Fatalf("merged scalars = %v, want [one two]", merged.List)
	}
}

func strPtr(s string) *string { return &s }

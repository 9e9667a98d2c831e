package model

import "encoding/json"

// AnswerValue is either free text or a list of selected options. A nil
// List means text; a non-nil List (possibly empty) means a selection.
type AnswerValue struct {
	Text string
	List []string
}

// TextAnswer builds a free-text answer value.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{Text: s}
}

// Selection builds a list answer value.
func Selection(items ...string) AnswerValue {
	if items == nil {
		items = []string{}
	}
	return AnswerValue{List: items}
}

// IsList reports whether the value is a selection rather than text.
func (v AnswerValue) IsList() bool {
	return v.List != nil
}

// IsEmpty reports whether the value carries no content.
func (v AnswerValue) IsEmpty() bool {
	if v.IsList() {
		return len(v.List) == 0
	}
	return v.Text == ""
}

// First returns the first selected option and whether one exists.
func (v AnswerValue) First() (string, bool) {
	if !v.IsList() || len(v.List) == 0 {
		return "", false
	}
	return v.List[0], true
}

// Contains reports whether a list answer includes s.
func (v AnswerValue) Contains(s string) bool {
	for _, item := range v.List {
		if item == s {
			return true
		}
	}
	return false
}

// Matches reports whether the answer equals s, or, for a selection,
// includes s.
func (v AnswerValue) Matches(s string) bool {
	if v.IsList() {
		return v.Contains(s)
	}
	return v.Text == s
}

// Strings returns the value as a slice: the selection itself, or the
// text as a single element. Empty text yields nil.
func (v AnswerValue) Strings() []string {
	if v.IsList() {
		return v.List
	}
	if v.Text == "" {
		return nil
	}
	return []string{v.Text}
}

// MarshalJSON encodes a selection as a JSON array and text as a string,
// matching the wire format of the submission endpoint.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a string or an array of strings.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Text = s
		v.List = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	v.Text = ""
	v.List = list
	return nil
}

// AnswerMap maps question ids to recorded answers. Skipped questions
// never gain entries, except answers restored from an older snapshot.
type AnswerMap map[string]AnswerValue

// Clone returns a copy safe for independent mutation of the map.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package flow

import "memberportal/internal/model"

// ResolveVirtual computes the derived value for one virtual entry rule.
// A nil result means the rule produces no output and must be omitted
// from the outgoing payload.
func ResolveVirtual(rule model.VirtualRule, answer model.AnswerValue) *model.AnswerValue {
	switch rule.Mode {
	case model.DeriveCopy:
		v := answer
		return &v
	case model.DeriveFirstOfSelection:
		first, ok := answer.First()
		if !ok {
			return nil
		}
		v := model.TextAnswer(first)
		return &v
	case model.DeriveValueIfIncludes:
		if answer.IsList() && answer.Contains(rule.Token) {
			v := model.Selection(rule.Value)
			return &v
		}
		return nil
	}
	return nil
}

// MergeVirtual combines two non-nil results targeting the same output
// field. Results are concatenated, never overwritten, because rules on
// different source questions may feed one field with different values.
func MergeVirtual(existing, next model.AnswerValue) model.AnswerValue {
	merged := append([]string{}, existing.Strings()...)
	merged = append(merged, next.Strings()...)
	return model.Selection(merged...)
}

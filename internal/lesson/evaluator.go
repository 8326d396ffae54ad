package lesson

import "strings"

// Evaluate checks a user answer against a question's own correctness rule.
// It is pure and total: malformed or missing answers evaluate to false, never
// to a panic or an error. Choice position is never consulted, only text.
func Evaluate(q Question, answer any) bool {
	switch q.Archetype {
	case ListenChoose, PictureMatch, FillBlankDialog, TrueFalse:
		text, ok := asString(answer)
		if !ok {
			return false
		}
		// Case-sensitive on purpose: Thai script has no letter case.
		return strings.TrimSpace(text) == q.CorrectText

	case ArrangeSentence, TimelineOrder:
		got, ok := asStringSlice(answer)
		if !ok || len(got) != len(q.CorrectOrder) {
			return false
		}
		for i, tok := range got {
			if tok != q.CorrectOrder[i] {
				return false
			}
		}
		return true

	case DragMatch:
		return evaluateDragMatch(q, answer)

	case TransformParaphrase:
		text, ok := asString(answer)
		if !ok {
			return false
		}
		for _, token := range q.MustContain {
			if !strings.Contains(text, token) {
				return false
			}
		}
		return len(q.MustContain) > 0

	default:
		return false
	}
}

// evaluateDragMatch requires every left item to be paired exactly once with
// the right item carrying its correct match text. Partial matches score as
// incorrect; there is no partial credit.
func evaluateDragMatch(q Question, answer any) bool {
	pairs, ok := asPairs(answer)
	if !ok || len(pairs) != len(q.LeftItems) {
		return false
	}

	leftByID := make(map[string]MatchItem, len(q.LeftItems))
	for _, item := range q.LeftItems {
		leftByID[item.ID] = item
	}
	rightByID := make(map[string]MatchItem, len(q.RightItems))
	for _, item := range q.RightItems {
		rightByID[item.ID] = item
	}

	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if seen[p.LeftID] {
			return false
		}
		seen[p.LeftID] = true

		left, lok := leftByID[p.LeftID]
		right, rok := rightByID[p.RightID]
		if !lok || !rok || left.CorrectMatch != right.Text {
			return false
		}
	}
	return true
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asStringSlice accepts []string directly or []any as produced by
// encoding/json decoding into interface values.
func asStringSlice(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, len(vv))
		for i, el := range vv {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func asPairs(v any) ([]PairAnswer, bool) {
	switch vv := v.(type) {
	case []PairAnswer:
		return vv, true
	case []any:
		out := make([]PairAnswer, len(vv))
		for i, el := range vv {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, false
			}
			leftID, lok := m["left_id"].(string)
			rightID, rok := m["right_id"].(string)
			if !lok || !rok {
				return nil, false
			}
			out[i] = PairAnswer{LeftID: leftID, RightID: rightID}
		}
		return out, true
	default:
		return nil, false
	}
}

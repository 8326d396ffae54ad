package lesson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateSingleChoice(t *testing.T) {
	q := Question{Archetype: ListenChoose, CorrectText: "สวัสดี", Choices: []string{"สวัสดี", "ขอบคุณ", "ลาก่อน", "ขอโทษ"}}

	assert.True(t, Evaluate(q, "สวัสดี"))
	assert.True(t, Evaluate(q, "  สวัสดี  "), "surrounding whitespace is forgiven")
	assert.False(t, Evaluate(q, "ขอบคุณ"))
	assert.False(t, Evaluate(q, ""))
}

func TestEvaluateTrueFalse(t *testing.T) {
	q := Question{Archetype: TrueFalse, CorrectText: AnswerWrong, Choices: []string{AnswerRight, AnswerWrong}}

	assert.True(t, Evaluate(q, AnswerWrong))
	assert.False(t, Evaluate(q, AnswerRight))
}

func TestEvaluateOrderExactPosition(t *testing.T) {
	q := Question{Archetype: ArrangeSentence, CorrectOrder: []string{"ฉัน", "ชอบ", "ข้าว"}}

	assert.True(t, Evaluate(q, []string{"ฉัน", "ชอบ", "ข้าว"}))
	assert.False(t, Evaluate(q, []string{"ชอบ", "ฉัน", "ข้าว"}), "right tokens, wrong order")
	assert.False(t, Evaluate(q, []string{"ฉัน", "ชอบ"}), "too short")
	assert.False(t, Evaluate(q, []string{"ฉัน", "ชอบ", "ข้าว", "และ"}), "extra token")
}

func TestEvaluateOrderFromDecodedJSON(t *testing.T) {
	q := Question{Archetype: TimelineOrder, CorrectOrder: []string{"หนึ่ง", "สอง"}}

	var decoded any
	require.NoError(t, json.Unmarshal([]byte(`["หนึ่ง","สอง"]`), &decoded))
	assert.True(t, Evaluate(q, decoded))
}

func dragMatchQuestion() Question {
	return Question{
		Archetype: DragMatch,
		LeftItems: []MatchItem{
			{ID: "l0", Text: "ข้าว", CorrectMatch: "rice"},
			{ID: "l1", Text: "น้ำ", CorrectMatch: "water"},
		},
		RightItems: []MatchItem{
			{ID: "r0", Text: "water"},
			{ID: "r1", Text: "rice"},
		},
	}
}

func TestEvaluateDragMatch(t *testing.T) {
	q := dragMatchQuestion()

	assert.True(t, Evaluate(q, []PairAnswer{{LeftID: "l0", RightID: "r1"}, {LeftID: "l1", RightID: "r0"}}))

	// One correct pair plus one wrong pair scores as incorrect.
	assert.False(t, Evaluate(q, []PairAnswer{{LeftID: "l0", RightID: "r1"}, {LeftID: "l1", RightID: "r1"}}))

	// Incomplete pairing is incorrect.
	assert.False(t, Evaluate(q, []PairAnswer{{LeftID: "l0", RightID: "r1"}}))

	// Reusing the same left item does not count twice.
	assert.False(t, Evaluate(q, []PairAnswer{{LeftID: "l0", RightID: "r1"}, {LeftID: "l0", RightID: "r1"}}))

	// Unknown ids are incorrect, not an error.
	assert.False(t, Evaluate(q, []PairAnswer{{LeftID: "lX", RightID: "r1"}, {LeftID: "l1", RightID: "r0"}}))
}

func TestEvaluateDragMatchFromDecodedJSON(t *testing.T) {
	q := dragMatchQuestion()

	var decoded any
	require.NoError(t, json.Unmarshal([]byte(`[{"left_id":"l0","right_id":"r1"},{"left_id":"l1","right_id":"r0"}]`), &decoded))
	assert.True(t, Evaluate(q, decoded))
}

func TestEvaluateParaphrase(t *testing.T) {
	q := Question{
		Archetype:     TransformParaphrase,
		SourceText:    "ฉันอยากได้น้ำ",
		TargetPattern: "ขอ ... หน่อย",
		MustContain:   []string{"ขอ", "น้ำ"},
	}

	assert.True(t, Evaluate(q, "ขอน้ำหน่อย"))
	assert.True(t, Evaluate(q, "ขอ น้ำ ด้วยครับ"), "extra words allowed if required tokens present")
	assert.False(t, Evaluate(q, "เอาน้ำมา"), "missing required token")
	assert.False(t, Evaluate(q, "ขอข้าวหน่อย"))
}

// Evaluate must be total: any shape of garbage answer returns false.
func TestEvaluateNeverPanicsOnGarbage(t *testing.T) {
	questions := []Question{
		{Archetype: ListenChoose, CorrectText: "ก"},
		{Archetype: PictureMatch, CorrectText: "ก"},
		{Archetype: FillBlankDialog, CorrectText: "ก"},
		{Archetype: TrueFalse, CorrectText: AnswerRight},
		{Archetype: ArrangeSentence, CorrectOrder: []string{"ก", "ข"}},
		{Archetype: TimelineOrder, CorrectOrder: []string{"ก", "ข"}},
		dragMatchQuestion(),
		{Archetype: TransformParaphrase, MustContain: []string{"ก"}},
		{Archetype: Archetype("bogus")},
	}
	garbage := []any{
		nil,
		42,
		3.14,
		true,
		map[string]any{"answer": "ก"},
		[]int{1, 2, 3},
		[]any{1, "ก"},
		[]any{map[string]any{"left_id": 1, "right_id": "r0"}},
		struct{}{},
	}

	for _, q := range questions {
		for _, g := range garbage {
			assert.NotPanics(t, func() {
				assert.False(t, Evaluate(q, g))
			})
		}
	}
}

func TestEvaluateParaphraseEmptyRuleIsFalse(t *testing.T) {
	q := Question{Archetype: TransformParaphrase}
	assert.False(t, Evaluate(q, "anything"))
}

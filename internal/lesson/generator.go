package lesson

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/napatw/lingothai/internal/content"
)

// Mix states how many questions of each archetype a lesson screen wants.
// It is per-lesson configuration, not a rule the generator owns.
type Mix map[Archetype]int

// DefaultMix is used when a lesson does not author its own quota.
var DefaultMix = Mix{
	ListenChoose:    3,
	PictureMatch:    2,
	DragMatch:       2,
	ArrangeSentence: 2,
	TrueFalse:       1,
}

// connectiveWords are filler tokens injected into word banks. They are chosen
// so they rarely appear in generated sentences; collisions with the correct
// order are filtered out at injection time.
var connectiveWords = []string{"และ", "หรือ", "แต่", "ก็", "แล้ว", "ด้วย"}

// sentenceFrames are slot templates used to build arrangeable sentences
// around a vocabulary item.
var sentenceFrames = [][]string{
	{"ฉัน", "ชอบ", "{}"},
	{"นี่", "คือ", "{}"},
	{"ขอ", "{}", "หน่อย"},
	{"ฉัน", "อยาก", "ได้", "{}"},
}

// Generator turns a vocabulary pool into a randomized question sequence.
// Generation is intentionally unseeded in production; tests inject a fixed
// source to assert structural invariants.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil source means ambient randomness.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src)}
}

// Generate builds one question per requested slot and globally shuffles the
// result. An empty pool yields an empty sequence; the caller must treat that
// as "nothing to practice", not an error.
func (g *Generator) Generate(pool []content.VocabItem, mix Mix) []Question {
	if len(pool) == 0 {
		return nil
	}
	if len(mix) == 0 {
		mix = DefaultMix
	}

	picker := newItemPicker(g.rng, pool)
	var questions []Question

	for _, arch := range Archetypes {
		for i := 0; i < mix[arch]; i++ {
			q := g.build(arch, picker, pool)
			q.ID = uuid.NewString()
			questions = append(questions, q)
		}
	}

	g.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions
}

func (g *Generator) build(arch Archetype, picker *itemPicker, pool []content.VocabItem) Question {
	switch arch {
	case ListenChoose:
		item := picker.pick()
		return Question{
			Archetype:   ListenChoose,
			AudioText:   item.AudioText,
			CorrectText: item.Thai,
			Choices:     g.choices(pool, item.Thai, thaiText),
		}
	case PictureMatch:
		item := picker.pick()
		return Question{
			Archetype:   PictureMatch,
			ImageKey:    item.ImageKey,
			CorrectText: item.Thai,
			Choices:     g.choices(pool, item.Thai, thaiText),
		}
	case FillBlankDialog:
		item := picker.pick()
		return Question{
			Archetype:   FillBlankDialog,
			Template:    fmt.Sprintf("A: อันนี้ภาษาไทยพูดว่าอะไร\nB: อันนี้เรียกว่า ____ (%s)", item.Translation),
			CorrectText: item.Thai,
			Choices:     g.choices(pool, item.Thai, thaiText),
		}
	case TrueFalse:
		return g.buildTrueFalse(picker, pool)
	case DragMatch:
		return g.buildDragMatch(pool)
	case ArrangeSentence:
		return g.buildArrangeSentence(picker)
	case TimelineOrder:
		return g.buildTimelineOrder(pool)
	case TransformParaphrase:
		item := picker.pick()
		return Question{
			Archetype:     TransformParaphrase,
			SourceText:    "ฉันอยากได้" + item.Thai,
			TargetPattern: "ขอ ... หน่อย",
			MustContain:   []string{"ขอ", item.Thai},
		}
	}
	return Question{}
}

// buildTrueFalse pairs an item with either its own translation or a
// different item's. A single-item pool can only produce true statements.
func (g *Generator) buildTrueFalse(picker *itemPicker, pool []content.VocabItem) Question {
	item := picker.pick()
	translation := item.Translation
	correct := AnswerRight

	if g.rng.Intn(2) == 1 {
		if other, ok := g.otherItem(pool, item.ID); ok {
			translation = other.Translation
			correct = AnswerWrong
		}
	}

	return Question{
		Archetype:   TrueFalse,
		Statement:   fmt.Sprintf("\"%s\" แปลว่า \"%s\"", item.Thai, translation),
		CorrectText: correct,
		Choices:     []string{AnswerRight, AnswerWrong},
	}
}

func (g *Generator) buildDragMatch(pool []content.VocabItem) Question {
	count := 4
	if len(pool) < count {
		count = len(pool)
	}
	sampled := g.sample(pool, count)

	left := make([]MatchItem, len(sampled))
	right := make([]MatchItem, len(sampled))
	for i, item := range sampled {
		left[i] = MatchItem{ID: fmt.Sprintf("l%d", i), Text: item.Thai, CorrectMatch: item.Translation}
		right[i] = MatchItem{ID: fmt.Sprintf("r%d", i), Text: item.Translation}
	}
	g.rng.Shuffle(len(right), func(i, j int) {
		right[i], right[j] = right[j], right[i]
	})

	return Question{Archetype: DragMatch, LeftItems: left, RightItems: right}
}

func (g *Generator) buildArrangeSentence(picker *itemPicker) Question {
	item := picker.pick()
	frame := sentenceFrames[g.rng.Intn(len(sentenceFrames))]

	order := make([]string, len(frame))
	for i, tok := range frame {
		if tok == "{}" {
			order[i] = item.Thai
		} else {
			order[i] = tok
		}
	}

	return Question{
		Archetype:    ArrangeSentence,
		CorrectOrder: order,
		WordBank:     g.bank(order),
	}
}

// buildTimelineOrder uses the pool's authored ordering as the canonical
// sequence of steps.
func (g *Generator) buildTimelineOrder(pool []content.VocabItem) Question {
	count := 4
	if len(pool) < count {
		count = len(pool)
	}
	start := 0
	if len(pool) > count {
		start = g.rng.Intn(len(pool) - count + 1)
	}

	order := make([]string, count)
	for i := 0; i < count; i++ {
		order[i] = pool[start+i].Thai
	}

	return Question{
		Archetype:    TimelineOrder,
		CorrectOrder: order,
		WordBank:     g.bank(order),
	}
}

// bank builds a shuffled token bank: the correct tokens plus 1-2 connective
// fillers that do not collide with any token already in the order.
func (g *Generator) bank(order []string) []BankToken {
	inOrder := make(map[string]bool, len(order))
	for _, tok := range order {
		inOrder[tok] = true
	}

	tokens := make([]string, 0, len(order)+2)
	tokens = append(tokens, order...)

	fillerCount := 1 + g.rng.Intn(2)
	offset := g.rng.Intn(len(connectiveWords))
	for i := 0; i < len(connectiveWords) && fillerCount > 0; i++ {
		filler := connectiveWords[(offset+i)%len(connectiveWords)]
		if inOrder[filler] {
			continue
		}
		tokens = append(tokens, filler)
		inOrder[filler] = true
		fillerCount--
	}

	g.rng.Shuffle(len(tokens), func(i, j int) {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	})

	bank := make([]BankToken, len(tokens))
	for i, tok := range tokens {
		bank[i] = BankToken{ID: fmt.Sprintf("w%d", i), Text: tok}
	}
	return bank
}

func thaiText(item content.VocabItem) string { return item.Thai }

// choices assembles correct + 3 distractors and shuffles. Distractors never
// share text with the correct answer, so exactly one choice is correct even
// when a tiny pool forces repeats.
func (g *Generator) choices(pool []content.VocabItem, correct string, text func(content.VocabItem) string) []string {
	var candidates []string
	for _, item := range pool {
		if t := strings.TrimSpace(text(item)); t != "" && t != correct {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		for _, w := range connectiveWords {
			if w != correct {
				candidates = append(candidates, w)
			}
		}
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	const distractors = 3
	out := []string{correct}
	for i := 0; i < distractors; i++ {
		out = append(out, candidates[i%len(candidates)])
	}

	g.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func (g *Generator) sample(pool []content.VocabItem, count int) []content.VocabItem {
	idx := g.rng.Perm(len(pool))[:count]
	out := make([]content.VocabItem, count)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

func (g *Generator) otherItem(pool []content.VocabItem, excludeID string) (content.VocabItem, bool) {
	var others []content.VocabItem
	for _, item := range pool {
		if item.ID != excludeID {
			others = append(others, item)
		}
	}
	if len(others) == 0 {
		return content.VocabItem{}, false
	}
	return others[g.rng.Intn(len(others))], true
}

// itemPicker samples without replacement while unused items remain, then
// falls back to sampling with replacement so a small pool never blocks
// generation.
type itemPicker struct {
	rng  *rand.Rand
	pool []content.VocabItem
	used map[string]bool
}

func newItemPicker(rng *rand.Rand, pool []content.VocabItem) *itemPicker {
	return &itemPicker{rng: rng, pool: pool, used: make(map[string]bool)}
}

func (p *itemPicker) pick() content.VocabItem {
	var fresh []content.VocabItem
	for _, item := range p.pool {
		if !p.used[item.ID] {
			fresh = append(fresh, item)
		}
	}
	if len(fresh) == 0 {
		return p.pool[p.rng.Intn(len(p.pool))]
	}
	item := fresh[p.rng.Intn(len(fresh))]
	p.used[item.ID] = true
	return item
}

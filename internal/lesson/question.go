package lesson

// Archetype identifies a question shape. The set is closed; adding one means
// touching the generator, the evaluator and the content that requests it.
type Archetype string

const (
	ListenChoose        Archetype = "listen_choose"
	PictureMatch        Archetype = "picture_match"
	DragMatch           Archetype = "drag_match"
	ArrangeSentence     Archetype = "arrange_sentence"
	FillBlankDialog     Archetype = "fill_blank_dialog"
	TransformParaphrase Archetype = "transform_paraphrase"
	TimelineOrder       Archetype = "timeline_order"
	TrueFalse           Archetype = "true_false"
)

// Archetypes lists every supported question shape.
var Archetypes = []Archetype{
	ListenChoose,
	PictureMatch,
	DragMatch,
	ArrangeSentence,
	FillBlankDialog,
	TransformParaphrase,
	TimelineOrder,
	TrueFalse,
}

// True/false answers use the Thai words for right/wrong.
const (
	AnswerRight = "ถูก"
	AnswerWrong = "ผิด"
)

// BankToken is one draggable token in a word or step bank.
type BankToken struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MatchItem is one side of a drag-to-match pair. CorrectMatch is set on left
// items only and holds the text of the right item it pairs with.
type MatchItem struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	CorrectMatch string `json:"correct_match,omitempty"`
}

// Question is the tagged union over archetypes. Archetype decides which fields
// are populated; the evaluator switches on it and nothing else. Every question
// carries an ID unique within its session, used as the answer-log key.
type Question struct {
	ID        string    `json:"id"`
	Archetype Archetype `json:"archetype"`

	// Single-choice shapes (ListenChoose, PictureMatch, FillBlankDialog, TrueFalse).
	AudioText   string   `json:"audio_text,omitempty"`
	ImageKey    string   `json:"image_key,omitempty"`
	Template    string   `json:"template,omitempty"`
	Statement   string   `json:"statement,omitempty"`
	CorrectText string   `json:"correct_text,omitempty"`
	Choices     []string `json:"choices,omitempty"`

	// Ordered shapes (ArrangeSentence, TimelineOrder).
	CorrectOrder []string    `json:"correct_order,omitempty"`
	WordBank     []BankToken `json:"word_bank,omitempty"`

	// DragMatch.
	LeftItems  []MatchItem `json:"left_items,omitempty"`
	RightItems []MatchItem `json:"right_items,omitempty"`

	// TransformParaphrase.
	SourceText    string   `json:"source_text,omitempty"`
	TargetPattern string   `json:"target_pattern,omitempty"`
	MustContain   []string `json:"must_contain,omitempty"`
}

// PairAnswer is one submitted left/right pairing for a DragMatch question.
type PairAnswer struct {
	LeftID  string `json:"left_id"`
	RightID string `json:"right_id"`
}

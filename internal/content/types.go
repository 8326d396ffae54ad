package content

// VocabItem is one vocabulary or phrase entry in a lesson pool. Items are
// loaded once per session and never mutated.
type VocabItem struct {
	ID          string `json:"id"`
	Thai        string `json:"thai"`
	Translation string `json:"translation"`
	AudioText   string `json:"audio_text"`
	ImageKey    string `json:"image_key,omitempty"`
	Phonetic    string `json:"phonetic,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Lesson bundles a vocabulary pool with the question mix its screen requests.
// The mix is authored per lesson; it is configuration, not engine logic.
type Lesson struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Order        int            `json:"order"`
	Prerequisite string         `json:"prerequisite,omitempty"`
	Pool         []VocabItem    `json:"pool"`
	Mix          map[string]int `json:"mix"`
}

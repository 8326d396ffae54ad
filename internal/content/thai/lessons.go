// Package thai registers the built-in Thai lesson content. Pools are
// authored data; the session engine treats them as opaque, pre-validated
// items.
package thai

import "github.com/napatw/lingothai/internal/content"

func init() {
	content.Register(greetings, food)
}

var greetings = &content.Lesson{
	ID:          "th-greetings",
	Title:       "Greetings",
	Description: "Say hello, thank you and goodbye.",
	Order:       1,
	Mix: map[string]int{
		"listen_choose":    3,
		"picture_match":    2,
		"drag_match":       2,
		"arrange_sentence": 2,
		"true_false":       1,
	},
	Pool: []content.VocabItem{
		{ID: "gr-01", Thai: "สวัสดี", Translation: "hello", AudioText: "สวัสดี", ImageKey: "wave", Phonetic: "sa-wat-dee", Category: "greetings"},
		{ID: "gr-02", Thai: "ขอบคุณ", Translation: "thank you", AudioText: "ขอบคุณ", ImageKey: "thanks", Phonetic: "khop-khun", Category: "greetings"},
		{ID: "gr-03", Thai: "ลาก่อน", Translation: "goodbye", AudioText: "ลาก่อน", ImageKey: "goodbye", Phonetic: "laa-gon", Category: "greetings"},
		{ID: "gr-04", Thai: "สบายดีไหม", Translation: "how are you", AudioText: "สบายดีไหม", ImageKey: "ask", Phonetic: "sa-baai-dee-mai", Category: "greetings"},
		{ID: "gr-05", Thai: "ขอโทษ", Translation: "sorry", AudioText: "ขอโทษ", ImageKey: "sorry", Phonetic: "khor-thot", Category: "greetings"},
		{ID: "gr-06", Thai: "ยินดีต้อนรับ", Translation: "welcome", AudioText: "ยินดีต้อนรับ", ImageKey: "welcome", Phonetic: "yin-dee-ton-rap", Category: "greetings"},
		{ID: "gr-07", Thai: "ไม่เป็นไร", Translation: "never mind", AudioText: "ไม่เป็นไร", ImageKey: "shrug", Phonetic: "mai-pen-rai", Category: "greetings"},
		{ID: "gr-08", Thai: "พบกันใหม่", Translation: "see you again", AudioText: "พบกันใหม่", ImageKey: "meet", Phonetic: "phop-gan-mai", Category: "greetings"},
	},
}

var food = &content.Lesson{
	ID:           "th-food",
	Title:        "Food & Drink",
	Description:  "Order at a street stall.",
	Order:        2,
	Prerequisite: "th-greetings",
	Mix: map[string]int{
		"listen_choose":        2,
		"picture_match":        2,
		"fill_blank_dialog":    2,
		"timeline_order":       1,
		"transform_paraphrase": 1,
		"true_false":           2,
	},
	Pool: []content.VocabItem{
		{ID: "fd-01", Thai: "ข้าว", Translation: "rice", AudioText: "ข้าว", ImageKey: "rice", Phonetic: "khaao", Category: "food"},
		{ID: "fd-02", Thai: "น้ำ", Translation: "water", AudioText: "น้ำ", ImageKey: "water", Phonetic: "naam", Category: "food"},
		{ID: "fd-03", Thai: "ก๋วยเตี๋ยว", Translation: "noodles", AudioText: "ก๋วยเตี๋ยว", ImageKey: "noodles", Phonetic: "guay-tiao", Category: "food"},
		{ID: "fd-04", Thai: "ผัดไทย", Translation: "pad thai", AudioText: "ผัดไทย", ImageKey: "padthai", Phonetic: "phat-thai", Category: "food"},
		{ID: "fd-05", Thai: "เผ็ด", Translation: "spicy", AudioText: "เผ็ด", ImageKey: "chili", Phonetic: "phet", Category: "food"},
		{ID: "fd-06", Thai: "อร่อย", Translation: "delicious", AudioText: "อร่อย", ImageKey: "yum", Phonetic: "a-roi", Category: "food"},
		{ID: "fd-07", Thai: "กาแฟ", Translation: "coffee", AudioText: "กาแฟ", ImageKey: "coffee", Phonetic: "gaa-fae", Category: "food"},
		{ID: "fd-08", Thai: "เท่าไหร่", Translation: "how much", AudioText: "เท่าไหร่", ImageKey: "price", Phonetic: "thao-rai", Category: "food"},
		{ID: "fd-09", Thai: "เก็บเงิน", Translation: "the bill, please", AudioText: "เก็บเงิน", ImageKey: "bill", Phonetic: "gep-ngern", Category: "food"},
		{ID: "fd-10", Thai: "หิว", Translation: "hungry", AudioText: "หิว", ImageKey: "hungry", Phonetic: "hiu", Category: "food"},
	},
}

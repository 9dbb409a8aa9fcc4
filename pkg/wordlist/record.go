// Package wordlist parses vocabulary corpora into records that can be sampled.
package wordlist

// Record is one parsed vocabulary line.
type Record interface {
	// Key is the primary "word" field; selection de-duplicates on it.
	Key() string
	// Gloss is what the learner is quizzed on: a translation, meaning or pinyin.
	Gloss() string
	// Label is secondary information shown on the card (id, frequency, reading).
	Label() string
}

// IELTSWord is a line of the comma-separated IELTS list: "id,word,translation".
type IELTSWord struct {
	ID          string `json:"id"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

func (w IELTSWord) Key() string   { return w.Word }
func (w IELTSWord) Gloss() string { return w.Translation }
func (w IELTSWord) Label() string { return w.ID }

// HSKWord is a line of the tab or whitespace separated Chinese list:
// "word pinyin frequency".
type HSKWord struct {
	Word      string `json:"word"`
	Pinyin    string `json:"pinyin"`
	Frequency string `json:"frequency"`
}

func (w HSKWord) Key() string   { return w.Word }
func (w HSKWord) Gloss() string { return w.Pinyin }
func (w HSKWord) Label() string { return w.Frequency }

// JLPTWord is a line of a Japanese list: "word,meaning". Reading is derived
// by morphological analysis and may be empty.
type JLPTWord struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Reading string `json:"reading,omitempty"`
}

func (w JLPTWord) Key() string   { return w.Word }
func (w JLPTWord) Gloss() string { return w.Meaning }
func (w JLPTWord) Label() string { return w.Reading }

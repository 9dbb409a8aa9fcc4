package lookup

// Speech holds the parameters a speech synthesizer should use for a word.
type Speech struct {
	Text   string  `json:"text"`
	Lang   string  `json:"lang"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

var speechLangs = map[string]string{
	English:           "en-US",
	SimplifiedChinese: "zh-CN",
	Cantonese:         "zh-HK",
	Japanese:          "ja-JP",
}

// SpeechFor returns playback parameters for word spoken in lang. Words are
// read slightly slower than normal speech.
func SpeechFor(word, lang string) Speech {
	tag, ok := speechLangs[lang]
	if !ok {
		tag = "en-US"
	}
	return Speech{Text: word, Lang: tag, Rate: 0.8, Pitch: 1, Volume: 1}
}

// Package lookup builds the outward-facing helpers a card offers: online
// translation links, illustrative images and speech parameters.
package lookup

import (
	"fmt"
	"net/url"
)

// Provider is an online translation service.
type Provider string

const (
	Bing   Provider = "bing"
	Google Provider = "google"
)

// Language codes accepted by TranslateURL.
const (
	English           = "en"
	SimplifiedChinese = "cn"
	Cantonese         = "yue"
	Japanese          = "ja"
)

var bingCodes = map[string]string{
	English:           "en",
	SimplifiedChinese: "zh-Hans",
	Cantonese:         "yue",
	Japanese:          "ja",
}

var googleCodes = map[string]string{
	English:           "en",
	SimplifiedChinese: "zh-CN",
	Cantonese:         "yue",
	Japanese:          "ja",
}

// TranslateURL returns the page translating word from one language to
// another on the given provider.
func TranslateURL(p Provider, from, to, word string) (string, error) {
	switch p {
	case Bing:
		src, dst, err := codes(bingCodes, from, to)
		if err != nil {
			return "", err
		}
		q := url.Values{}
		q.Set("from", src)
		q.Set("to", dst)
		q.Set("setlang", dst)
		q.Set("text", word)
		return "https://cn.bing.com/translator?" + q.Encode(), nil
	case Google:
		src, dst, err := codes(googleCodes, from, to)
		if err != nil {
			return "", err
		}
		q := url.Values{}
		q.Set("sl", src)
		q.Set("tl", dst)
		q.Set("text", word)
		q.Set("op", "translate")
		return "https://translate.google.com/?" + q.Encode(), nil
	default:
		return "", fmt.Errorf("unknown translation provider %q", p)
	}
}

func codes(table map[string]string, from, to string) (string, string, error) {
	src, ok := table[from]
	if !ok {
		return "", "", fmt.Errorf("unsupported source language %q", from)
	}
	dst, ok := table[to]
	if !ok {
		return "", "", fmt.Errorf("unsupported target language %q", to)
	}
	return src, dst, nil
}

package reading

import (
	"testing"

	"github.com/japaniel/dailywords/pkg/selection"
	"github.com/japaniel/dailywords/pkg/wordlist"
)

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestReading(t *testing.T) {
	analyzer, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}

	tests := []struct {
		word, want string
	}{
		{"犬", "いぬ"},
		{"猫", "ねこ"},
		{"食べる", "たべる"},
		{"テスト", "てすと"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := analyzer.Reading(tt.word); got != tt.want {
			t.Errorf("Reading(%q) = %q; want %q", tt.word, got, tt.want)
		}
	}
}

func TestAnalyzeBaseForm(t *testing.T) {
	analyzer, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	tokens := analyzer.Analyze("行った")
	if len(tokens) == 0 {
		t.Fatal("no tokens")
	}
	if tokens[0].BaseForm != "行く" {
		t.Errorf("base form = %q; want 行く", tokens[0].BaseForm)
	}
}

func TestParseJLPTLineFeedsSampler(t *testing.T) {
	analyzer, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	lines := []string{"犬,dog", "猫,cat", "bad line", "犬,hound"}
	pool, skipped := wordlist.Pool(lines, analyzer.ParseJLPTLine)
	if skipped != 1 || len(pool) != 3 {
		t.Fatalf("pool %+v skipped %d", pool, skipped)
	}
	if pool[0].Reading != "いぬ" {
		t.Errorf("reading = %q; want いぬ", pool[0].Reading)
	}

	picked := selection.Sample(pool, 10, selection.DeriveSeed("2024-01-01"), wordlist.JLPTWord.Key)
	if len(picked) != 2 {
		t.Fatalf("expected 犬 and 猫 once each, got %+v", picked)
	}
}

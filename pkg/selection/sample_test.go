package selection

import (
	"reflect"
	"strings"
	"testing"
)

type entry struct {
	id, word string
}

func entryKey(e entry) string { return e.word }

func TestShuffleGolden(t *testing.T) {
	tests := []struct {
		n    int
		seed uint32
		want []int
	}{
		{3, DeriveSeed("2024-01-01"), []int{2, 1, 0}},
		{5, DeriveSeed("2024-01-01"), []int{3, 0, 4, 2, 1}},
		{6, DeriveSeed("2025-10-17"), []int{5, 2, 0, 1, 3, 4}},
		{10, 42, []int{8, 7, 6, 3, 9, 2, 1, 5, 4, 0}},
		{1, 7, []int{0}},
		{0, 7, []int{}},
	}
	for _, tt := range tests {
		if got := Shuffle(tt.n, tt.seed); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Shuffle(%d, %d) = %v; want %v", tt.n, tt.seed, got, tt.want)
		}
	}
}

func TestSampleDeduplicatesCaseInsensitively(t *testing.T) {
	candidates := []entry{{"1", "apple"}, {"2", "banana"}, {"3", "Apple"}}
	got := Sample(candidates, 2, DeriveSeed("2024-01-01"), entryKey)

	// Shuffle order is [2, 1, 0]: "Apple" wins over "apple", then "banana".
	want := []entry{{"3", "Apple"}, {"2", "banana"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sample = %v; want %v", got, want)
	}
}

func TestSampleFoldsKeysWithFullUnicodeLowercase(t *testing.T) {
	tests := []struct {
		a, b string
		dup  bool
	}{
		{"Apple", "apple", true},
		{"İstanbul", "istanbul", false}, // İ lowercases to i + combining dot
		{"İstanbul", "i\u0307stanbul", true},
		{"ÄPFEL", "äpfel", true},
	}
	for _, tt := range tests {
		candidates := []entry{{"1", tt.a}, {"2", tt.b}}
		got := Sample(candidates, 2, DeriveSeed("2024-01-01"), entryKey)
		if dup := len(got) == 1; dup != tt.dup {
			t.Errorf("%q vs %q: duplicate = %v, want %v (got %v)", tt.a, tt.b, dup, tt.dup, got)
		}
	}
}

func TestSampleReproducible(t *testing.T) {
	var candidates []entry
	for i := 0; i < 500; i++ {
		candidates = append(candidates, entry{id: string(rune('a' + i%26)), word: strings.Repeat("w", i%37+1) + string(rune('A'+i%26))})
	}
	seed := DeriveSeed("2024-03-15")
	first := Sample(candidates, 100, seed, entryKey)
	second := Sample(candidates, 100, seed, entryKey)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two samples with the same seed differ")
	}
	if other := Sample(candidates, 100, DeriveSeed("2024-03-16"), entryKey); reflect.DeepEqual(first, other) {
		t.Fatal("samples for different dates are identical")
	}
}

func TestSampleNoDuplicatesAndSizeBound(t *testing.T) {
	words := []string{"Cat", "cat", "CAT", "dog", "Dog", "bird", "fish", "FISH", "ant"}
	var candidates []entry
	for i, w := range words {
		candidates = append(candidates, entry{id: string(rune('0' + i)), word: w})
	}
	unique := 5 // cat, dog, bird, fish, ant

	for _, count := range []int{0, 1, 3, 5, 9, 100} {
		for seed := uint32(0); seed < 50; seed++ {
			got := Sample(candidates, count, seed, entryKey)
			if len(got) > min(count, unique) {
				t.Fatalf("count %d seed %d: got %d entries", count, seed, len(got))
			}
			if count >= unique && len(got) != unique {
				t.Fatalf("count %d seed %d: want all %d unique words, got %d", count, seed, unique, len(got))
			}
			seen := map[string]bool{}
			for _, e := range got {
				k := strings.ToLower(e.word)
				if seen[k] {
					t.Fatalf("count %d seed %d: duplicate key %q in %v", count, seed, k, got)
				}
				seen[k] = true
			}
		}
	}
}

func TestSampleEdgeCases(t *testing.T) {
	if got := Sample([]entry{}, 10, 12345, entryKey); got == nil || len(got) != 0 {
		t.Fatalf("empty pool: got %#v", got)
	}
	if got := Sample[entry](nil, 10, 12345, entryKey); len(got) != 0 {
		t.Fatalf("nil pool: got %#v", got)
	}
	three := []entry{{"1", "apple"}, {"2", "banana"}, {"3", "cherry"}}
	if got := Sample(three, 0, 1, entryKey); len(got) != 0 {
		t.Fatalf("count 0: got %v", got)
	}
	if got := Sample(three, -4, 1, entryKey); len(got) != 0 {
		t.Fatalf("negative count: got %v", got)
	}

	seed := DeriveSeed("2024-01-01")
	got := Sample(three, 100, seed, entryKey)
	want := []entry{three[2], three[1], three[0]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("count larger than pool: got %v; want %v", got, want)
	}
}

func TestSampleDoesNotMutateCandidates(t *testing.T) {
	candidates := []entry{{"1", "a"}, {"2", "b"}, {"3", "c"}, {"4", "d"}}
	orig := append([]entry(nil), candidates...)
	Sample(candidates, 2, 99, entryKey)
	if !reflect.DeepEqual(candidates, orig) {
		t.Fatalf("candidates mutated: %v", candidates)
	}
}

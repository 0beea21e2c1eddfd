package prim

import (
	"fmt"
	"strings"
	"testing"
)

func TestLabelFor(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		tests := []struct {
			index int
			want  string
		}{
			{0, "A"},
			{1, "B"},
			{25, "Z"},
			{26, "AA"},
			{27, "AB"},
			{51, "AZ"},
			{52, "BA"},
			{701, "ZZ"},
			{702, "AAA"},
		}

		for _, tt := range tests {
			if got := labelFor(tt.index); got != tt.want {
				t.Errorf("labelFor(%d) = %q, want %q", tt.index, got, tt.want)
			}
		}
	})

	t.Run("sequence", func(t *testing.T) {
		// The first 27 labels must be A..Z, AA in that exact order.
		var want []string
		for c := 'A'; c <= 'Z'; c++ {
			want = append(want, string(c))
		}
		want = append(want, "AA")

		for i, w := range want {
			if got := labelFor(i); got != w {
				t.Errorf("labelFor(%d) = %q, want %q", i, got, w)
			}
		}
	})
}

func TestEncodeChoices(t *testing.T) {
	t.Run("display", func(t *testing.T) {
		set := encodeChoices([]string{"Positive", "Negative", "Neutral"})

		want := "A. Positive\nB. Negative\nC. Neutral"
		if set.display != want {
			t.Errorf("display = %q, want %q", set.display, want)
		}
	})

	t.Run("empty", func(t *testing.T) {
		set := encodeChoices(nil)
		if set.display != "" {
			t.Errorf("display = %q, want empty", set.display)
		}
		if _, ok := set.lookup("A"); ok {
			t.Error("lookup on empty set should miss")
		}
	})

	t.Run("duplicates keep positional labels", func(t *testing.T) {
		set := encodeChoices([]string{"same", "same"})

		if !strings.Contains(set.display, "A. same") || !strings.Contains(set.display, "B. same") {
			t.Errorf("duplicate choices should keep distinct labels, got %q", set.display)
		}
		if i, _ := set.lookup("B"); i != 1 {
			t.Errorf("lookup(B) = %d, want 1", i)
		}
	})
}

func TestChoiceRoundTrip(t *testing.T) {
	// For every choice count 1..100, decoding the label assigned to index i
	// must return i.
	for count := 1; count <= 100; count++ {
		choices := make([]string, count)
		for i := range choices {
			choices[i] = fmt.Sprintf("choice-%d", i)
		}
		set := encodeChoices(choices)

		for i := range choices {
			index, ok := set.lookup(labelFor(i))
			if !ok {
				t.Fatalf("count %d: label %q for index %d not in map", count, labelFor(i), i)
			}
			if index != i {
				t.Fatalf("count %d: lookup(labelFor(%d)) = %d", count, i, index)
			}
		}

		// The next label past the end must miss.
		if _, ok := set.lookup(labelFor(count)); ok {
			t.Fatalf("count %d: label beyond set should miss", count)
		}
	}
}

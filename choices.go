package prim

import "strings"

// labelFor returns the spreadsheet-style column label for a zero-based
// index: 0 -> "A", 25 -> "Z", 26 -> "AA", 701 -> "ZZ", 702 -> "AAA".
func labelFor(index int) string {
	var label []byte
	for n := index + 1; n > 0; n /= 26 {
		n--
		label = append(label, byte('A'+n%26))
	}
	for i, j := 0, len(label)-1; i < j; i, j = i+1, j-1 {
		label[i], label[j] = label[j], label[i]
	}
	return string(label)
}

// choiceSet is the encoded form of an ordered choice list: the display text
// shown to the model and the label-to-index map used to decode its answer.
// Labels are purely positional; duplicate choice strings keep distinct labels.
type choiceSet struct {
	display string
	index   map[string]int
}

// encodeChoices assigns labels to choices in input order and renders one
// "LABEL. choice" line per choice.
func encodeChoices(choices []string) choiceSet {
	var b strings.Builder
	index := make(map[string]int, len(choices))
	for i, choice := range choices {
		label := labelFor(i)
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(label)
		b.WriteString(". ")
		b.WriteString(choice)
		index[label] = i
	}
	return choiceSet{display: b.String(), index: index}
}

// lookup resolves a label back to its choice index. Labels the encoding did
// not produce are absent, never coerced.
func (s choiceSet) lookup(label string) (int, bool) {
	i, ok := s.index[label]
	return i, ok
}

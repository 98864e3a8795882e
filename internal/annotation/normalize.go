package annotation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery applies Unicode NFC normalization and whitespace
// standardization to a query term before it enters the cascade.  Offsets of
// extracted entities are never normalized; they stay relative to the caller's
// original text.
func NormalizeQuery(text string) string {
	text = norm.NFC.String(text)
	// Collapse whitespace
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		} else {
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// RepairOffsets enforces the entity offset invariant against the original
// text: an entity whose claimed [StartPos, EndPos) slice does not reproduce
// its Text gets its offsets recomputed from the first case-insensitive
// occurrence; an entity whose text does not occur at all is discarded.
// Surviving entities always satisfy originalText[StartPos:EndPos] == Text up
// to case.
func RepairOffsets(originalText string, entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.Text == "" {
			continue
		}
		if offsetsValid(originalText, e) {
			out = append(out, e)
			continue
		}
		idx := indexFold(originalText, e.Text)
		if idx < 0 {
			continue
		}
		e.StartPos = idx
		e.EndPos = idx + len(e.Text)
		out = append(out, e)
	}
	return out
}

func offsetsValid(text string, e Entity) bool {
	if e.StartPos < 0 || e.EndPos > len(text) || e.StartPos >= e.EndPos {
		return false
	}
	return text[e.StartPos:e.EndPos] == e.Text
}

// indexFold returns the byte index of the first case-insensitive occurrence
// of substr in s, or -1.  A plain lowercase-then-Index would shift byte
// offsets whenever case folding changes rune widths, so the scan compares
// equal-length windows with EqualFold instead.
func indexFold(s, substr string) int {
	n := len(substr)
	if n == 0 || n > len(s) {
		return -1
	}
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

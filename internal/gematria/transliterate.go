package gematria

import (
	"strings"
	"unicode/utf8"
)

// Transliterate converts Latin text to Hebrew letters word by word.
// Only ASCII letters take part; everything else is dropped.
func Transliterate(text string) string {
	words := strings.Fields(asciiLower(text))
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, transliterateWord(w))
	}
	return strings.TrimSpace(strings.Join(out, " "))
}

func transliterateWord(word string) string {
	var b strings.Builder
	for i := 0; i < len(word); {
		if i+2 <= len(word) {
			if r, ok := digraphs[word[i:i+2]]; ok {
				b.WriteRune(r)
				i += 2
				continue
			}
		}
		if r, ok := letters[word[i]]; ok {
			b.WriteRune(r)
		}
		i++
	}
	return b.String()
}

// Value sums the character values of a Hebrew string. Unknown runes count 0.
func Value(hebrew string) int {
	total := 0
	for _, r := range hebrew {
		total += characterValues[r]
	}
	return total
}

// asciiLower lowers A-Z only, so non-ASCII runes never fold into Latin letters.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isUpperASCII(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r >= 'A' && r <= 'Z'
}

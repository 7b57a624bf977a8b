package gematria

import "strings"

// ExtractKeyTerms returns capitalized tokens and quoted phrases in first-seen
// order, deduplicated by exact string.
//
// A token opening with a double quote starts a phrase that runs to the first
// token (itself included) closing with one. The phrase is kept whatever its
// casing and its tokens are not examined again. An unclosed quote is treated
// as an ordinary token.
func ExtractKeyTerms(text string) []string {
	tokens := strings.Fields(text)
	seen := make(map[string]bool)
	var terms []string

	add := func(term string) {
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	next := nextClosing(tokens)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if strings.HasPrefix(tok, `"`) {
			if end := closingQuote(tokens, next, i); end >= 0 {
				phrase := strings.Join(tokens[i:end+1], " ")
				add(strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(phrase, `"`), `"`)))
				i = end
				continue
			}
		}
		if isUpperASCII(tok) {
			add(tok)
		}
	}

	return terms
}

// nextClosing maps each token index to the first later token ending with a
// double quote, or -1 when none follows.
func nextClosing(tokens []string) []int {
	next := make([]int, len(tokens))
	closing := -1
	for i := len(tokens) - 1; i >= 0; i-- {
		next[i] = closing
		if strings.HasSuffix(tokens[i], `"`) {
			closing = i
		}
	}
	return next
}

// closingQuote finds the index of the token closing a phrase opened at start.
func closingQuote(tokens []string, next []int, start int) int {
	if tok := tokens[start]; len(tok) >= 2 && strings.HasSuffix(tok, `"`) {
		return start
	}
	return next[start]
}

// Package gematria scores text by transliterating its key terms into Hebrew
// letters and summing their values.
//
// All functions are pure and read only package-level tables, so they are safe
// to call from any number of goroutines.
package gematria

import (
	"fmt"
	"strings"

	"github.com/ppiankov/omen/internal/model"
)

// interpretationTerms is how many key terms feed the interpretation sentence.
const interpretationTerms = 3

// Analyze extracts key terms from text and scores each of them.
func Analyze(text string) model.GematriaAnalysis {
	terms := ExtractKeyTerms(text)

	result := model.GematriaAnalysis{KeyTerms: make([]model.KeyTerm, 0, len(terms))}
	for _, term := range terms {
		kt := ScoreTerm(term)
		result.KeyTerms = append(result.KeyTerms, kt)
		result.TotalValue += kt.Value
	}
	result.Interpretation = Interpret(result)

	return result
}

// ScoreTerm transliterates and scores a single term.
func ScoreTerm(term string) model.KeyTerm {
	hebrew := Transliterate(term)
	value := Value(hebrew)
	return model.KeyTerm{
		Term:                 term,
		Hebrew:               hebrew,
		Value:                value,
		BiblicalSignificance: BiblicalSignificance(value),
	}
}

// BiblicalSignificance returns the exact entry for v, if any, followed by the
// nearest entry when it differs from v.
func BiblicalSignificance(v int) []model.BiblicalMatch {
	var matches []model.BiblicalMatch

	exact := false
	if meaning, ok := meaningOf(v); ok {
		exact = true
		matches = append(matches, model.BiblicalMatch{
			Number:  v,
			Meaning: meaning,
			Type:    model.MatchExact,
		})
	}

	closest := biblicalNumbers[0]
	best := abs(closest.number - v)
	for _, b := range biblicalNumbers[1:] {
		if d := abs(b.number - v); d < best {
			closest, best = b, d
		}
	}

	if closest.number != v || !exact {
		diff := best
		matches = append(matches, model.BiblicalMatch{
			Number:     closest.number,
			Meaning:    closest.meaning,
			Type:       model.MatchApproximate,
			Difference: &diff,
		})
	}

	return matches
}

// Interpret renders the summary sentence for an analysis.
func Interpret(a model.GematriaAnalysis) string {
	n := len(a.KeyTerms)
	if n > interpretationTerms {
		n = interpretationTerms
	}

	meanings := make([]string, 0, n)
	for _, kt := range a.KeyTerms[:n] {
		meanings = append(meanings, kt.PrimaryMeaning())
	}

	return fmt.Sprintf("Gematria analysis reveals a combined value of %d. Key terms resonate with: %s.",
		a.TotalValue, strings.Join(meanings, ", "))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

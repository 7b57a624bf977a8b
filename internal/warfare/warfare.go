// Package warfare scans text for spiritual warfare indicators: themed
// keyword classifications, occult deity references and ritualistic language.
package warfare

import (
	"fmt"
	"strings"

	"github.com/ppiankov/omen/internal/model"
)

// Severity weights per hit.
const (
	classificationWeight = 20
	occultWeight         = 15
	ritualisticWeight    = 10
	maxSeverity          = 100
)

// Scan evaluates text against the static tables. It never fails.
func Scan(text string) model.WarfareResult {
	lower := strings.ToLower(text)

	result := model.WarfareResult{
		Classifications:     classify(lower),
		OccultReferences:    occultReferences(lower),
		RitualisticLanguage: ritualisticLanguage(lower),
	}
	result.Severity = Severity(len(result.Classifications), len(result.OccultReferences), len(result.RitualisticLanguage))
	result.Interpretation = Interpret(result)

	return result
}

// Severity combines hit counts into a 0-100 score.
func Severity(classificationCount, occultCount, ritualisticCount int) int {
	score := classificationWeight*classificationCount +
		occultWeight*occultCount +
		ritualisticWeight*ritualisticCount
	if score > maxSeverity {
		return maxSeverity
	}
	if score < 0 {
		return 0
	}
	return score
}

func classify(lower string) []model.ClassificationMatch {
	matches := make([]model.ClassificationMatch, 0)
	for _, c := range classifications {
		keywords := containedIn(lower, c.keywords)
		patterns := containedIn(lower, c.patterns)
		if len(keywords) == 0 && len(patterns) == 0 {
			continue
		}
		matches = append(matches, model.ClassificationMatch{
			Type:              c.kind,
			Name:              c.name,
			Description:       c.description,
			BiblicalReference: c.biblicalReference,
			Matches: model.Matches{
				Keywords: keywords,
				Patterns: patterns,
			},
		})
	}
	return matches
}

func occultReferences(lower string) []model.OccultReference {
	refs := make([]model.OccultReference, 0)
	for _, d := range occultSymbolism {
		for _, term := range d.terms {
			if strings.Contains(lower, term) {
				refs = append(refs, model.OccultReference{
					Type:      "deity",
					Name:      d.name,
					Reference: term,
				})
			}
		}
	}
	return refs
}

func ritualisticLanguage(lower string) []string {
	found := make([]string, 0)
	for _, p := range ritualisticPatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			found = append(found, p)
		}
	}
	return found
}

// containedIn returns the needles present in haystack, never nil.
func containedIn(haystack string, needles []string) []string {
	found := make([]string, 0)
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			found = append(found, n)
		}
	}
	return found
}

// Interpret renders the narrative for a scan result. The severity clause is
// always present.
func Interpret(r model.WarfareResult) string {
	var b strings.Builder

	if len(r.Classifications) > 0 {
		names := make([]string, 0, len(r.Classifications))
		for _, c := range r.Classifications {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&b, "Detected spiritual warfare indicators: %s. ", strings.Join(names, ", "))
	}

	if deities := DeityNames(r.OccultReferences); len(deities) > 0 {
		fmt.Fprintf(&b, "Occult references found: %s. ", strings.Join(deities, ", "))
	}

	if len(r.RitualisticLanguage) > 0 {
		b.WriteString("Ritualistic language patterns are present. ")
	}

	fmt.Fprintf(&b, "Overall spiritual warfare severity: %s (%d/100)", model.LevelFor(r.Severity), r.Severity)

	return b.String()
}

// DeityNames returns the distinct deity names of refs in first-seen order.
func DeityNames(refs []model.OccultReference) []string {
	seen := make(map[string]bool)
	var names []string
	for _, ref := range refs {
		if !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	return names
}

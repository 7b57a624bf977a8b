package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/omen/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize writes a narrative for the report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	Report model.Report

	// AllowedURLs is the only set of URLs the narrative may cite
	AllowedURLs []string

	// Prompt overrides BuildPrompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama" or "" (disabled)
	Provider string
	Model    string
	APIKey   string

	// BaseURL points the OpenAI client at any compatible server
	BaseURL string

	Timeout int // seconds

	// StrictCitations rejects narratives citing URLs outside the allowlist
	StrictCitations bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:         30,
		StrictCitations: true,
		MaxTokens:       800,
	}
}

const systemPrompt = "You describe keyword and numerology findings in news articles. You restate the findings; you never add new ones."

// BuildPrompt constructs the default prompt for a report
func BuildPrompt(report model.Report, allowedURLs []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are summarizing an Omen report. Omen scores article text with two fixed heuristics: Hebrew gematria over capitalized and quoted terms, and a keyword scan for spiritual warfare indicators. The scores are deterministic; you must not change, re-derive or dispute them.

RULES:
1. You may ONLY cite URLs from this list:
%s

2. Do not introduce findings that are not listed below.
3. Describe what was matched and where the severity comes from.
4. Keep a neutral register; the report flags language, it does not make claims about intent.

Report:
- Subject: %s
- Severity: %d/100 (%s)
- Gematria total: %d across %d key term(s)
`, joinURLs(allowedURLs), report.Subject, report.Warfare.Severity, report.Warfare.Level(),
		report.Gematria.TotalValue, len(report.Gematria.KeyTerms))

	if len(report.Warfare.Classifications) > 0 {
		sb.WriteString("\nClassifications:\n")
		for _, c := range report.Warfare.Classifications {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", c.Name, c.BiblicalReference,
				strings.Join(append(append([]string{}, c.Matches.Keywords...), c.Matches.Patterns...), ", "))
		}
	}

	if len(report.Warfare.OccultReferences) > 0 {
		fmt.Fprintf(&sb, "\nOccult references: %s\n", strings.Join(deityNames(report.Warfare.OccultReferences), ", "))
	}

	if len(report.Warfare.RitualisticLanguage) > 0 {
		fmt.Fprintf(&sb, "\nRitualistic language: %s\n", strings.Join(report.Warfare.RitualisticLanguage, ", "))
	}

	if len(report.Gematria.KeyTerms) > 0 {
		sb.WriteString("\nTop key terms:\n")
		for i, kt := range report.Gematria.KeyTerms {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&sb, "- %s = %d (%s)\n", kt.Term, kt.Value, kt.PrimaryMeaning())
		}
	}

	sb.WriteString("\nProvide a 3-4 sentence summary of these findings.")

	return sb.String()
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No URLs may be cited)"
	}
	var sb strings.Builder
	for i, url := range urls {
		if i >= 20 {
			fmt.Fprintf(&sb, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&sb, "\n- %s", url)
	}
	return sb.String()
}

func deityNames(refs []model.OccultReference) []string {
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

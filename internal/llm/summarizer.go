package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/omen/internal/model"
)

// Summarizer wraps an optional provider. Summaries are attached to a report
// after scoring and never change it.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; an empty provider yields a disabled one
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary asks the provider for a narrative. Provider failures are
// reported as warnings on the summary rather than as errors.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	name := s.provider.Name()
	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:         false,
			Provider:        name,
			StrictCitations: s.config.StrictCitations,
			Warnings:        []string{fmt.Sprintf("LLM provider %s is not available", name)},
		}, nil
	}

	allowed := AllowedURLs(report)
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:      report,
		AllowedURLs: allowed,
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		return &model.LLMSummary{
			Enabled:         true,
			Provider:        name,
			Model:           s.config.Model,
			StrictCitations: s.config.StrictCitations,
			Warnings:        []string{fmt.Sprintf("LLM summary generation failed: %v", err)},
		}, nil
	}

	warnings := []string{fmt.Sprintf("Tokens used: %d", resp.TokensUsed)}
	if s.config.StrictCitations {
		warnings = append(warnings, fmt.Sprintf("Verified %d citations against %d allowed URL(s)", len(resp.CitedURLs), len(allowed)))
	}

	return &model.LLMSummary{
		Enabled:         true,
		Provider:        name,
		Model:           firstNonEmpty(resp.Model, s.config.Model),
		StrictCitations: s.config.StrictCitations,
		SummaryMD:       resp.Summary,
		Warnings:        warnings,
	}, nil
}

// AllowedURLs lists the URLs a narrative may cite: the scanned page only
func AllowedURLs(report model.Report) []string {
	var urls []string
	for _, u := range []string{report.SourceURL, report.Article.URL} {
		if u != "" && !contains(urls, u) {
			urls = append(urls, u)
		}
	}
	return urls
}

// RenderSeparateMarkdown renders an enabled summary as a standalone document
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("# LLM Summary\n\n")
	sb.WriteString("> **GENERATED CONTENT.** This narrative restates the report findings. ")
	sb.WriteString("Scores, classifications and gematria values were determined independently and are not affected by it.\n\n")

	fmt.Fprintf(&sb, "- **Provider:** %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&sb, "- **Model:** %s\n", summary.Model)
	}
	fmt.Fprintf(&sb, "- **Strict Citations:** %t\n\n", summary.StrictCitations)

	sb.WriteString("## Summary\n\n")
	if summary.SummaryMD == "" {
		sb.WriteString("_No summary generated._\n")
	} else {
		sb.WriteString(summary.SummaryMD)
		sb.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		sb.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return sb.String()
}

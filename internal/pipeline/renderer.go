package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/omen/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal digest
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteJSON streams the report as indented JSON to w
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes a pre-rendered LLM summary document
func (r *Renderer) RenderLLMMarkdown(content string, path string) error {
	if content == "" {
		return nil
	}
	return writeFile(path, []byte(content))
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var sb strings.Builder
	w := report.Warfare
	g := report.Gematria

	fmt.Fprintf(&sb, "# Omen Report: %s\n\n", report.Subject)
	if report.SourceURL != "" {
		fmt.Fprintf(&sb, "- **Source:** %s\n", report.SourceURL)
	}
	fmt.Fprintf(&sb, "- **Origin:** %s\n", report.Origin)
	fmt.Fprintf(&sb, "- **Analyzed:** %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 UTC"))
	if report.Article.PublishedAt != nil {
		fmt.Fprintf(&sb, "- **Published:** %s\n", report.Article.PublishedAt.Format("2006-01-02"))
	}
	if report.FetchMeta != nil && report.FetchMeta.FromCache {
		sb.WriteString("- **Fetched from cache**\n")
	}
	fmt.Fprintf(&sb, "- **Report ID:** `%s`\n\n", report.ID)

	sb.WriteString("## Spiritual Warfare\n\n")
	fmt.Fprintf(&sb, "**Severity:** %d/100 (%s)\n\n", w.Severity, w.Level())

	if len(w.Classifications) > 0 {
		sb.WriteString("| Classification | Reference | Keywords | Patterns |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, c := range w.Classifications {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				c.Name, c.BiblicalReference, joinOrDash(c.Matches.Keywords), joinOrDash(c.Matches.Patterns))
		}
		sb.WriteString("\n")
	}

	if len(w.OccultReferences) > 0 {
		sb.WriteString("**Occult references:**\n\n")
		for _, ref := range w.OccultReferences {
			fmt.Fprintf(&sb, "- %s (`%s`)\n", ref.Name, ref.Reference)
		}
		sb.WriteString("\n")
	}

	if len(w.RitualisticLanguage) > 0 {
		fmt.Fprintf(&sb, "**Ritualistic language:** %s\n\n", strings.Join(w.RitualisticLanguage, ", "))
	}

	fmt.Fprintf(&sb, "> %s\n\n", w.Interpretation)

	sb.WriteString("## Gematria\n\n")
	fmt.Fprintf(&sb, "**Combined value:** %d\n\n", g.TotalValue)
	if len(g.KeyTerms) > 0 {
		sb.WriteString("| Term | Hebrew | Value | Significance |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, kt := range g.KeyTerms {
			fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", escapeCell(kt.Term), kt.Hebrew, kt.Value, significance(kt))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "> %s\n\n", g.Interpretation)

	if len(report.Signals) > 0 {
		sb.WriteString("## Signals\n\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&sb, "- %s **%s:** %s\n", severityIcon(s.Severity), s.Type, s.Description)
		}
		sb.WriteString("\n")
	}

	if report.Fingerprint != "" {
		fmt.Fprintf(&sb, "**Fingerprint:** `%s`\n\n", report.Fingerprint)
	}

	if report.LLM != nil && report.LLM.Enabled && report.LLM.SummaryMD != "" {
		sb.WriteString("## LLM Summary\n\n")
		sb.WriteString(report.LLM.SummaryMD)
		sb.WriteString("\n\n")
	}

	if r.includeFooter {
		sb.WriteString("---\n\n")
		sb.WriteString("_Generated by omen. Scores come from fixed keyword tables and letter values; ")
		sb.WriteString("they flag language patterns and make no claim about intent._\n")
	}

	return sb.String()
}

// RenderSummary prints a short digest of the report
func (r *Renderer) RenderSummary(out io.Writer, report *model.Report) {
	w := report.Warfare

	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "  %s\n", report.Subject)
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Severity:        %d/100 (%s)\n", w.Severity, w.Level())
	fmt.Fprintf(out, "  Classifications: %d\n", len(w.Classifications))
	fmt.Fprintf(out, "  Occult refs:     %d\n", len(w.OccultReferences))
	fmt.Fprintf(out, "  Ritual patterns: %d\n", len(w.RitualisticLanguage))
	fmt.Fprintf(out, "  Gematria total:  %d (%d key terms)\n", report.Gematria.TotalValue, len(report.Gematria.KeyTerms))

	if len(w.Classifications) > 0 {
		names := make([]string, len(w.Classifications))
		for i, c := range w.Classifications {
			names[i] = c.Name
		}
		fmt.Fprintf(out, "\n  Indicators: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(out, "\n")
}

func significance(kt model.KeyTerm) string {
	parts := make([]string, 0, len(kt.BiblicalSignificance))
	for _, m := range kt.BiblicalSignificance {
		if m.Type == model.MatchExact {
			parts = append(parts, fmt.Sprintf("%d: %s", m.Number, m.Meaning))
			continue
		}
		diff := 0
		if m.Difference != nil {
			diff = *m.Difference
		}
		parts = append(parts, fmt.Sprintf("≈%d (±%d): %s", m.Number, diff, m.Meaning))
	}
	return joinOrDash(parts)
}

func severityIcon(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	default:
		return "🔵"
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

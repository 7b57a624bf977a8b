// Package analyze runs both text engines over an article and assembles the
// report with its diagnostic signals.
package analyze

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/omen/internal/fingerprint"
	"github.com/ppiankov/omen/internal/gematria"
	"github.com/ppiankov/omen/internal/logging"
	"github.com/ppiankov/omen/internal/model"
	"github.com/ppiankov/omen/internal/warfare"
)

// Analyzer turns articles into reports
type Analyzer struct {
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewAnalyzer creates a new analyzer. A nil logger discards output.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		logger: logging.OrNop(logger),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// Analyze scores the article text and builds a report
func (a *Analyzer) Analyze(article model.Article, origin model.Origin) *model.Report {
	text := article.Text()

	report := &model.Report{
		ID:         a.newID(),
		Subject:    subjectFor(article),
		SourceURL:  article.URL,
		Origin:     origin,
		AnalyzedAt: a.now(),
		Article:    article,
		Gematria:   gematria.Analyze(text),
		Warfare:    warfare.Scan(text),
	}
	report.Signals = Signals(report.Gematria, report.Warfare)

	digest, err := fingerprint.Compute(text)
	switch {
	case err == nil:
		report.Fingerprint = digest
	case errors.Is(err, fingerprint.ErrTooShort):
		a.logger.Debug("Text too short to fingerprint", zap.String("subject", report.Subject), zap.Int("bytes", len(text)))
	default:
		a.logger.Warn("Fingerprint failed", zap.String("subject", report.Subject), zap.Error(err))
	}

	a.logger.Debug("Article analyzed",
		zap.String("id", report.ID),
		zap.String("subject", report.Subject),
		zap.Int("key_terms", len(report.Gematria.KeyTerms)),
		zap.Int("gematria_total", report.Gematria.TotalValue),
		zap.Int("severity", report.Warfare.Severity))

	return report
}

// Signals derives the transparent signal list from both engine results
func Signals(g model.GematriaAnalysis, w model.WarfareResult) []model.Signal {
	signals := make([]model.Signal, 0, len(w.Classifications)+3)

	for _, c := range w.Classifications {
		hits := len(c.Matches.Keywords) + len(c.Matches.Patterns)
		severity := model.SeverityWarning
		if len(c.Matches.Patterns) > 0 {
			severity = model.SeverityCritical
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalClassification,
			Severity:    severity,
			Description: fmt.Sprintf("%s indicators (%s): %d hit(s)", c.Name, c.BiblicalReference, hits),
			Data: map[string]interface{}{
				"classification": string(c.Type),
				"keywords":       c.Matches.Keywords,
				"patterns":       c.Matches.Patterns,
				"weight":         20,
			},
		})
	}

	if len(w.OccultReferences) > 0 {
		deities := warfare.DeityNames(w.OccultReferences)
		signals = append(signals, model.Signal{
			Type:        model.SignalOccult,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("%d occult reference(s) across %d deity name(s)", len(w.OccultReferences), len(deities)),
			Data: map[string]interface{}{
				"deities": deities,
				"hits":    len(w.OccultReferences),
				"weight":  15,
			},
		})
	}

	if len(w.RitualisticLanguage) > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalRitualistic,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d ritualistic pattern(s) present", len(w.RitualisticLanguage)),
			Data: map[string]interface{}{
				"patterns": w.RitualisticLanguage,
				"weight":   10,
			},
		})
	}

	gSignal := model.Signal{
		Type:        model.SignalGematria,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%d key term(s), combined value %d", len(g.KeyTerms), g.TotalValue),
		Data: map[string]interface{}{
			"key_terms": len(g.KeyTerms),
			"total":     g.TotalValue,
		},
	}
	if exact := exactTerms(g); len(exact) > 0 {
		gSignal.Data["exact_terms"] = exact
	}
	signals = append(signals, gSignal)

	return signals
}

// exactTerms lists key terms whose value is itself a biblical number
func exactTerms(g model.GematriaAnalysis) []string {
	var terms []string
	for _, kt := range g.KeyTerms {
		for _, m := range kt.BiblicalSignificance {
			if m.Type == model.MatchExact {
				terms = append(terms, kt.Term)
				break
			}
		}
	}
	return terms
}

func subjectFor(article model.Article) string {
	switch {
	case article.Title != "":
		return article.Title
	case article.URL != "":
		return article.URL
	case article.Source != "":
		return article.Source
	default:
		return "untitled"
	}
}

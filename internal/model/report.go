package model

import "time"

// Report represents the complete analysis of one article
type Report struct {
	ID         string     `json:"id"`                   // Random report identifier
	Subject    string     `json:"subject"`              // Human-readable subject (title, URL slug or file name)
	SourceURL  string     `json:"sourceUrl,omitempty"`  // URL that was scanned, if any
	Origin     Origin     `json:"origin"`               // Where the text came from
	AnalyzedAt time.Time  `json:"analyzedAt"`           // When the analysis ran
	FetchMeta  *FetchMeta `json:"fetchMeta,omitempty"`  // HTTP metadata for scanned URLs

	Article  Article          `json:"article"`
	Gematria GematriaAnalysis `json:"gematria"`
	Warfare  WarfareResult    `json:"warfare"`

	Signals     []Signal `json:"signals"`               // Diagnostic signals with transparent data
	Fingerprint string   `json:"fingerprint,omitempty"` // TLSH digest of the article text

	LLM *LLMSummary `json:"llm,omitempty"` // Optional LLM narrative (separate, never affects scores)
}

// Origin classifies the input that produced a report
type Origin string

const (
	OriginURL   Origin = "url"
	OriginFile  Origin = "file"
	OriginStdin Origin = "stdin"
	OriginEmail Origin = "email"
)

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"statusCode"`
	ContentType  string            `json:"contentType,omitempty"`
	LastModified string            `json:"lastModified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	FromCache    bool              `json:"fromCache"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// Signal represents a diagnostic finding with the data that produced it
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalClassification SignalType = "classification"  // A warfare classification matched
	SignalOccult         SignalType = "occult_reference" // Deity terms present
	SignalRitualistic    SignalType = "ritualistic"      // Ritualistic language present
	SignalGematria       SignalType = "gematria"         // Numerology summary
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains the optional LLM-generated narrative
type LLMSummary struct {
	Enabled         bool     `json:"enabled"`
	Provider        string   `json:"provider,omitempty"`
	Model           string   `json:"model,omitempty"`
	StrictCitations bool     `json:"strictCitations"` // Only the scanned URL may be cited
	SummaryMD       string   `json:"summaryMd,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

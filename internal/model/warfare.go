package model

// ClassificationType identifies one of the fixed warfare categories
type ClassificationType string

const (
	ClassDeception       ClassificationType = "deception"
	ClassControl         ClassificationType = "control"
	ClassFalseLight      ClassificationType = "false-light"
	ClassProphecyMockery ClassificationType = "prophecy-mockery"
	ClassChaos           ClassificationType = "chaos"
)

// Matches lists the keywords and patterns of a classification found in text
type Matches struct {
	Keywords []string `json:"keywords"`
	Patterns []string `json:"patterns"`
}

// ClassificationMatch is a classification with at least one hit
type ClassificationMatch struct {
	Type              ClassificationType `json:"type"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	BiblicalReference string             `json:"biblicalReference"`
	Matches           Matches            `json:"matches"`
}

// OccultReference records one associated term of a deity found in text
type OccultReference struct {
	Type      string `json:"type"`      // Always "deity"
	Name      string `json:"name"`      // Deity name
	Reference string `json:"reference"` // The associated term that matched
}

// WarfareResult is the result of the warfare indicator scan
type WarfareResult struct {
	Classifications     []ClassificationMatch `json:"classifications" jsonschema:"required"`
	OccultReferences    []OccultReference     `json:"occultReferences" jsonschema:"required"`
	RitualisticLanguage []string              `json:"ritualisticLanguage" jsonschema:"required"`
	Severity            int                   `json:"severity" jsonschema:"required,minimum=0,maximum=100"`
	Interpretation      string                `json:"interpretation" jsonschema:"required"`
}

// SeverityLevel buckets a 0-100 severity score
type SeverityLevel string

const (
	LevelLow      SeverityLevel = "Low"
	LevelModerate SeverityLevel = "Moderate"
	LevelHigh     SeverityLevel = "High"
)

// LevelFor returns the bucket for a severity score
func LevelFor(severity int) SeverityLevel {
	switch {
	case severity < 30:
		return LevelLow
	case severity < 60:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Level returns the severity bucket of the result
func (r WarfareResult) Level() SeverityLevel {
	return LevelFor(r.Severity)
}

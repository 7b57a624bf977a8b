package model

// KeyTerm is a capitalized word or quoted phrase scored by the gematria engine
type KeyTerm struct {
	Term                 string          `json:"term"`                 // Original casing as found in the text
	Hebrew               string          `json:"hebrew"`               // Transliterated form
	Value                int             `json:"value"`                // Sum of character values
	BiblicalSignificance []BiblicalMatch `json:"biblicalSignificance"` // Exact and/or nearest table entries
}

// MatchType tells whether a biblical number matched a value exactly
type MatchType string

const (
	MatchExact       MatchType = "exact"
	MatchApproximate MatchType = "approximate"
)

// BiblicalMatch links a numeric value to an entry of the biblical numbers table
type BiblicalMatch struct {
	Number     int       `json:"number" jsonschema:"required"`
	Meaning    string    `json:"meaning" jsonschema:"required"`
	Type       MatchType `json:"type" jsonschema:"required,enum=exact,enum=approximate"`
	Difference *int      `json:"difference,omitempty" jsonschema:"minimum=1"` // Set only for approximate matches
}

// GematriaAnalysis is the result of scoring a block of text
type GematriaAnalysis struct {
	KeyTerms       []KeyTerm `json:"keyTerms" jsonschema:"required"`
	TotalValue     int       `json:"totalValue" jsonschema:"required,minimum=0"`
	Interpretation string    `json:"interpretation" jsonschema:"required"`
}

// PrimaryMeaning returns the first biblical meaning attached to the term
func (k KeyTerm) PrimaryMeaning() string {
	if len(k.BiblicalSignificance) == 0 {
		return ""
	}
	return k.BiblicalSignificance[0].Meaning
}

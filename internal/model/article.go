package model

import (
	"strings"
	"time"
)

// Article is the unit of text handed to the analyzers
type Article struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Body        string     `json:"body,omitempty"`
	URL         string     `json:"url,omitempty"`
	Source      string     `json:"source,omitempty"` // Publisher, sender or file name
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Text joins title, description and body into the blob both engines read
func (a Article) Text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Title, a.Description, a.Body} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// IsEmpty reports whether the article carries no text at all
func (a Article) IsEmpty() bool {
	return strings.TrimSpace(a.Text()) == ""
}

package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// SiteAdapter locates article text on pages of a particular site
type SiteAdapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter understands the page URL
	CanHandle(pageURL string) bool

	// BodyRoot returns the node holding the article text, or nil to use <body>
	BodyRoot(doc *html.Node) *html.Node

	// Skip reports whether a subtree is page chrome rather than article text
	Skip(n *html.Node) bool
}

// SiteRegistry picks the adapter for a page, falling back to the generic one
type SiteRegistry struct {
	adapters []SiteAdapter
	generic  SiteAdapter
}

// NewSiteRegistry creates a registry with the built-in adapters
func NewSiteRegistry() *SiteRegistry {
	r := &SiteRegistry{generic: genericSite{}}
	r.Register(wikipediaSite{})
	return r
}

// Register adds an adapter; earlier registrations win
func (r *SiteRegistry) Register(a SiteAdapter) {
	r.adapters = append(r.adapters, a)
}

// Find returns the first adapter that can handle pageURL
func (r *SiteRegistry) Find(pageURL string) SiteAdapter {
	for _, a := range r.adapters {
		if a.CanHandle(pageURL) {
			return a
		}
	}
	return r.generic
}

// genericSite prefers the <article> element
type genericSite struct{}

func (genericSite) Name() string { return "generic" }

func (genericSite) CanHandle(string) bool { return true }

func (genericSite) BodyRoot(doc *html.Node) *html.Node {
	return findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "article"
	})
}

func (genericSite) Skip(*html.Node) bool { return false }

// wikipediaSite reads the parser output and drops citation markers,
// infoboxes and navigation boxes
type wikipediaSite struct{}

func (wikipediaSite) Name() string { return "wikipedia" }

func (wikipediaSite) CanHandle(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}

func (wikipediaSite) BodyRoot(doc *html.Node) *html.Node {
	return findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			(hasClass(n, "mw-parser-output") || attr(n, "id") == "mw-content-text")
	})
}

func (wikipediaSite) Skip(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "sup", "table":
		return true
	}
	return hasClass(n, "mw-editsection") || hasClass(n, "navbox") || hasClass(n, "reflist") || hasClass(n, "hatnote")
}

// hasClass checks if a node has a specific CSS class
func hasClass(n *html.Node, className string) bool {
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

package extract

import (
	"strings"
	"time"

	"github.com/ppiankov/omen/internal/model"
	"golang.org/x/net/html"
)

// ArticleExtractor pulls title, description and body text out of a news page
type ArticleExtractor struct {
	skipTags map[string]bool
	sites    *SiteRegistry
}

// NewArticleExtractor creates a new article extractor
func NewArticleExtractor() *ArticleExtractor {
	return &ArticleExtractor{
		skipTags: map[string]bool{
			"script": true, "style": true, "noscript": true, "iframe": true,
			"nav": true, "footer": true, "header": true, "aside": true,
			"form": true, "svg": true, "template": true,
		},
		sites: NewSiteRegistry(),
	}
}

// Extract parses HTML content into an article
func (e *ArticleExtractor) Extract(htmlContent string, pageURL string) (model.Article, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return model.Article{}, err
	}

	article := model.Article{
		URL:         pageURL,
		Title:       firstNonEmpty(metaContent(doc, "og:title"), e.titleText(doc)),
		Description: firstNonEmpty(metaContent(doc, "og:description"), metaContent(doc, "description")),
		Source:      metaContent(doc, "og:site_name"),
	}

	if published := metaContent(doc, "article:published_time"); published != "" {
		if ts, err := time.Parse(time.RFC3339, published); err == nil {
			article.PublishedAt = &ts
		}
	}

	site := e.sites.Find(pageURL)
	root := site.BodyRoot(doc)
	if root == nil {
		root = findFirst(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "body"
		})
	}
	if root == nil {
		root = doc
	}

	article.Body = collapseSpace(e.visibleText(root, site))

	return article, nil
}

// visibleText extracts text nodes, skipping scripts, styles and page chrome
func (e *ArticleExtractor) visibleText(n *html.Node, site SiteAdapter) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && e.skipTags[n.Data] {
			return
		}
		if site.Skip(n) {
			return
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func (e *ArticleExtractor) titleText(doc *html.Node) string {
	title := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "title"
	})
	if title == nil || title.FirstChild == nil {
		return ""
	}
	return collapseSpace(title.FirstChild.Data)
}

// metaContent returns the content of <meta property=key> or <meta name=key>
func metaContent(doc *html.Node, key string) string {
	meta := findFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return false
		}
		return attr(n, "property") == key || attr(n, "name") == key
	})
	if meta == nil {
		return ""
	}
	return collapseSpace(attr(meta, "content"))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirst finds the first node matching a predicate in document order
func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

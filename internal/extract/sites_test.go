package extract

import (
	"testing"
)

func TestSiteRegistry_Find(t *testing.T) {
	registry := NewSiteRegistry()

	tests := []struct {
		url  string
		want string
	}{
		{"https://en.wikipedia.org/wiki/Moloch", "wikipedia"},
		{"https://wikipedia.org/wiki/Baal", "wikipedia"},
		{"https://notwikipedia.org.example.com/page", "generic"},
		{"https://news.example.com/story", "generic"},
		{"", "generic"},
		{"://bad", "generic"},
	}

	for _, tt := range tests {
		if got := registry.Find(tt.url).Name(); got != tt.want {
			t.Errorf("Find(%q) = %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestArticleExtractor_Wikipedia(t *testing.T) {
	page := `
	<html>
	<head><title>Moloch - Wikipedia</title></head>
	<body>
		<div id="mw-navigation">Main page Contents</div>
		<div id="mw-content-text"><div class="mw-parser-output">
			<div class="hatnote">For other uses, see Moloch (disambiguation).</div>
			<table class="infobox"><tr><td>Infobox text</td></tr></table>
			<p>Moloch is a name associated with child sacrifice.<sup class="reference">[1]</sup></p>
			<h2>History<span class="mw-editsection">[edit]</span></h2>
			<p>The name appears in the Hebrew Bible.</p>
			<div class="navbox">Deities of the Levant</div>
		</div></div>
	</body>
	</html>
	`

	article, err := NewArticleExtractor().Extract(page, "https://en.wikipedia.org/wiki/Moloch")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := "Moloch is a name associated with child sacrifice. History The name appears in the Hebrew Bible."
	if article.Body != want {
		t.Errorf("Unexpected body\nwant: %q\ngot:  %q", want, article.Body)
	}
}

func TestArticleExtractor_WikipediaMarkupOnOtherSites(t *testing.T) {
	page := `<html><body><p>Claim<sup>[1]</sup></p></body></html>`

	article, err := NewArticleExtractor().Extract(page, "https://news.example.com/story")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if article.Body != "Claim [1]" {
		t.Errorf("Generic pages keep superscripts, got %q", article.Body)
	}
}

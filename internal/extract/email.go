package extract

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/ppiankov/omen/internal/model"
)

// FromEmail reads a newsletter message. The subject becomes the title and the
// text part the body; HTML-only messages go through the article extractor.
func FromEmail(r io.Reader) (model.Article, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return model.Article{}, fmt.Errorf("read envelope: %w", err)
	}

	article := model.Article{
		Title:  strings.TrimSpace(env.GetHeader("Subject")),
		Source: strings.TrimSpace(env.GetHeader("From")),
	}

	if date, err := env.Date(); err == nil {
		ts := date.UTC().Truncate(time.Second)
		article.PublishedAt = &ts
	}

	switch {
	case strings.TrimSpace(env.Text) != "" && env.HTML == "":
		article.Body = strings.TrimSpace(env.Text)
	case env.HTML != "":
		fromHTML, err := NewArticleExtractor().Extract(env.HTML, "")
		if err != nil {
			return model.Article{}, fmt.Errorf("extract html part: %w", err)
		}
		article.Body = fromHTML.Body
		if article.Description == "" {
			article.Description = fromHTML.Description
		}
	}

	return article, nil
}

package extract

import (
	"strings"

	"github.com/ppiankov/omen/internal/model"
)

// FromText builds an article from plain text. The first non-empty line is
// the title and the remainder is the body.
func FromText(text string, source string) model.Article {
	article := model.Article{Source: source}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		article.Title = strings.TrimSpace(line)
		article.Body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		break
	}

	return article
}

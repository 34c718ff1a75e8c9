package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minExtractedLength is how much text a selector must yield before we
	// trust it over the next candidate.
	minExtractedLength = 200

	// maxContentLength caps stored article bodies.
	maxContentLength = 10000

	maxFetchBody = 2 << 20
)

// contentSelectors are tried in order against common publisher layouts.
var contentSelectors = []string{
	"article",
	".post-content",
	".article-content",
	".entry-content",
	".content",
	"main",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// FetchArticleContent downloads an article page and extracts its readable
// text. Returns an empty string, not an error, when nothing useful is found.
func (s *Scraper) FetchArticleContent(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetch article page: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return "", fmt.Errorf("parse article page: %w", err)
	}

	return extractContent(doc), nil
}

func extractContent(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, .ads, .advertisement").Remove()

	var content string
	for _, selector := range contentSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.First().Text())
		if len(text) > minExtractedLength {
			content = text
			break
		}
	}

	if content == "" {
		content = strings.TrimSpace(doc.Find("body").Text())
	}

	content = whitespaceRe.ReplaceAllString(content, " ")
	if len(content) > maxContentLength {
		content = content[:maxContentLength] + "..."
	}

	return content
}

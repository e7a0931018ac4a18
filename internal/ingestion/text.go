package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxSnapshotChars caps stored snapshot text. Company sites rarely carry
// more than this in useful copy, and the agents get the head of the page.
const MaxSnapshotChars = 20000

// noiseSelector matches elements that never carry lead-relevant copy.
const noiseSelector = "script, style, noscript, nav, footer, header, iframe, svg, .cookie-banner, .popup"

// contentSelectors are tried in order before falling back to body.
var contentSelectors = []string{"main", "article", ".content", "#content"}

// ExtractText parses HTML and returns the visible page text, noise stripped
// and whitespace collapsed, truncated to MaxSnapshotChars.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var content *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	text := collapseWhitespace(content.Text())
	// Truncate by characters, not bytes, so a multibyte rune at the cap is
	// never split into invalid UTF-8.
	if runes := []rune(text); len(runes) > MaxSnapshotChars {
		text = string(runes[:MaxSnapshotChars])
	}
	return text, nil
}

func collapseWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Limits applied to text pulled from a fetched page
const (
	MinPageTextLength = 100
	MaxPageTextLength = 2000
)

// VisibleText parses HTML and returns its visible text with whitespace
// collapsed. Script and style content is dropped.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return collapseWhitespace(extractVisibleText(doc)), nil
}

// PageText extracts analyzable text from a fetched page. Pages with too little
// text are rejected and long pages are truncated.
func PageText(htmlContent string) (string, error) {
	text, err := VisibleText(htmlContent)
	if err != nil {
		return "", err
	}

	if len([]rune(text)) < MinPageTextLength {
		return "", fmt.Errorf("insufficient content extracted from page (%d characters)", len([]rune(text)))
	}

	if runes := []rune(text); len(runes) > MaxPageTextLength {
		text = string(runes[:MaxPageTextLength])
	}

	return text, nil
}

// extractVisibleText walks text nodes, skipping non-content elements
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
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

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

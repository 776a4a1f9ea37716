package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMeta is descriptive metadata read from a fetched page's head
type PageMeta struct {
	Title        string `json:"title,omitempty"`
	SiteName     string `json:"siteName,omitempty"`
	Description  string `json:"description,omitempty"`
	CanonicalURL string `json:"canonicalUrl,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
}

// ExtractMeta reads page metadata. Title priority: og:title > twitter:title > h1 > title.
func ExtractMeta(htmlContent string) (PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return PageMeta{}, err
	}

	meta := PageMeta{
		Title: firstNonEmpty(
			metaContent(doc, `meta[property="og:title"]`),
			metaContent(doc, `meta[name="twitter:title"]`),
			strings.TrimSpace(doc.Find("h1").First().Text()),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		SiteName: metaContent(doc, `meta[property="og:site_name"]`),
		Description: firstNonEmpty(
			metaContent(doc, `meta[property="og:description"]`),
			metaContent(doc, `meta[name="description"]`),
		),
		PublishedAt: firstNonEmpty(
			metaContent(doc, `meta[property="article:published_time"]`),
			strings.TrimSpace(doc.Find("time[datetime]").First().AttrOr("datetime", "")),
		),
	}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		meta.CanonicalURL = strings.TrimSpace(href)
	}

	meta.Title = strings.Join(strings.Fields(meta.Title), " ")

	return meta, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

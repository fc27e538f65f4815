package guidelines

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Fetcher downloads a funder's guidelines page and reduces it to plain text
// ready for Parse. HTML pages are stripped to text; PDF responses are routed
// through the PDF extractor.
type Fetcher struct {
	UserAgent      string
	RequestTimeout time.Duration
	MaxBodySize    int
}

// NewFetcher returns a Fetcher with sensible defaults.
func NewFetcher() *Fetcher {
	return &Fetcher{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
	}
}

// FetchText retrieves the guidelines document at url and returns its plain
// text. It respects robots.txt and applies a per-domain delay.
func (f *Fetcher) FetchText(url string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
	)
	c.SetRequestTimeout(f.RequestTimeout)
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: 1 * time.Second}); err != nil {
		return "", err
	}

	var (
		text     string
		innerErr error
	)
	c.OnResponse(func(r *colly.Response) {
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		switch {
		case strings.Contains(contentType, "application/pdf"):
			text, innerErr = ExtractPDFText(r.Body)
		default:
			text, innerErr = htmlToText(string(r.Body))
		}
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("fetching guidelines from %s: %w", url, err)
	}
	if innerErr != nil {
		return "", fmt.Errorf("extracting guidelines text: %w", innerErr)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no readable text at %s", url)
	}

	return text, nil
}

// FetchAndParse retrieves and parses guidelines in one step.
func (f *Fetcher) FetchAndParse(url string) (Parsed, error) {
	text, err := f.FetchText(url)
	if err != nil {
		return Parsed{}, err
	}
	return Parse(text), nil
}

func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, header, footer").Remove()

	// Keep line structure: Parse anchors its label patterns to line ends.
	var builder strings.Builder
	doc.Find("p, li, h1, h2, h3, h4, td, th, div").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return // only leaf blocks, avoid duplicating nested text
		}
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line != "" {
			builder.WriteString(line)
			builder.WriteString("\n")
		}
	})
	if builder.Len() == 0 {
		return strings.Join(strings.Fields(doc.Text()), " "), nil
	}
	return builder.String(), nil
}

package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"seoscope/internal/core"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 10 * time.Second

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Page is the result of fetching and parsing one URL.
type Page struct {
	URL      string
	HTML     string
	Text     string // Plain text of the body, boilerplate removed
	Document *goquery.Document
	Metadata core.PageMetadata
}

// Fetcher retrieves and parses web pages.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with connection pooling and the given
// per-request timeout (DefaultTimeout when zero).
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchPage retrieves the page at url and extracts its text and metadata.
// A 403 response yields a *BlockedError; any other HTTP or network failure
// yields a *FetchError. The context bounds the whole request.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, &BlockedError{URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return ParsePage(url, string(body))
}

// ParsePage builds a Page from already-fetched HTML. Exposed separately so
// callers with pre-fetched content skip the network entirely.
func ParsePage(url, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return &Page{
		URL:      url,
		HTML:     html,
		Text:     ExtractText(doc),
		Document: doc,
		Metadata: ExtractMetadata(doc),
	}, nil
}

// ExtractMetadata pulls the title, meta description, keyword list, and h1
// texts out of the parsed document.
func ExtractMetadata(doc *goquery.Document) core.PageMetadata {
	meta := core.PageMetadata{
		Title: strings.TrimSpace(doc.Find("head title").First().Text()),
	}
	if meta.Title == "" {
		if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
			meta.Title = strings.TrimSpace(og)
		}
	}
	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		meta.MetaDescription = strings.TrimSpace(desc)
	}
	if kw, ok := doc.Find("meta[name='keywords']").Attr("content"); ok {
		for _, k := range strings.Split(kw, ",") {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				meta.Keywords = append(meta.Keywords, k)
			}
		}
	}
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			meta.H1Tags = append(meta.H1Tags, text)
		}
	})
	return meta
}

// ExtractText returns the page's visible text with script, style, and other
// non-content elements removed.
func ExtractText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, iframe").Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}

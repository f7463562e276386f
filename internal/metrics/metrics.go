package metrics

import (
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"seoscope/internal/core"
)

// ComputeContentMetrics calculates raw statistics over the page's plain text
// and metadata. It always returns a value: degenerate inputs produce zero
// metrics rather than an error.
func ComputeContentMetrics(content string, meta core.PageMetadata) core.ContentMetrics {
	wordCount := len(strings.Fields(content))

	density := make(map[string]float64)
	if len(meta.Keywords) > 0 {
		lowered := strings.ToLower(content)
		for _, keyword := range meta.Keywords {
			kw := strings.ToLower(strings.TrimSpace(keyword))
			if kw == "" {
				continue
			}
			count := countWholeWord(lowered, kw)
			if wordCount > 0 {
				density[kw] = float64(count) / float64(wordCount) * 100
			} else {
				density[kw] = 0
			}
		}
	}

	return core.ContentMetrics{
		WordCount:             wordCount,
		KeywordDensity:        density,
		TitleLength:           utf8.RuneCountInString(meta.Title),
		MetaDescriptionLength: utf8.RuneCountInString(meta.MetaDescription),
	}
}

// keywordPatterns caches the compiled word-boundary matcher per keyword, so
// repeated analyses of the same tracked keywords compile each pattern once.
var keywordPatterns = struct {
	sync.Mutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

func wordPattern(kw string) *regexp.Regexp {
	keywordPatterns.Lock()
	defer keywordPatterns.Unlock()
	re, ok := keywordPatterns.m[kw]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		keywordPatterns.m[kw] = re
	}
	return re
}

// countWholeWord counts word-boundary occurrences of kw in text, so that
// "cat" does not match inside "category". Both inputs are expected to be
// lowercased already.
func countWholeWord(text, kw string) int {
	return len(wordPattern(kw).FindAllStringIndex(text, -1))
}

// ComputeTechnicalFactors counts technical SEO signals in the parsed page:
// images missing alt text, internal vs external anchors, and heading counts.
// It is a pure function of the document; no network access happens here.
func ComputeTechnicalFactors(pageURL string, doc *goquery.Document) core.TechnicalFactors {
	factors := core.TechnicalFactors{
		HeadingStructure: make(map[string]int),
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if alt, exists := s.Attr("alt"); !exists || alt == "" {
			factors.ImagesWithoutAlt++
		}
	})

	baseHost := hostOf(pageURL)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		// Anchors without an href count as internal; everything else is
		// classified by host.
		if !exists || href == "" || hostOf(href) == baseHost {
			factors.InternalLinks++
		} else {
			factors.ExternalLinks++
		}
	})

	for _, level := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		factors.HeadingStructure[level] = doc.Find(level).Length()
	}

	return factors
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Host
}

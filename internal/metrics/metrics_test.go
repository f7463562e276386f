package metrics

import (
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"seoscope/internal/core"
)

func TestComputeContentMetricsWordCount(t *testing.T) {
	m := ComputeContentMetrics("one two  three\n four", core.PageMetadata{})
	if m.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", m.WordCount)
	}
}

func TestComputeContentMetricsEmptyContent(t *testing.T) {
	meta := core.PageMetadata{Keywords: []string{"go"}}
	m := ComputeContentMetrics("", meta)
	if m.WordCount != 0 {
		t.Errorf("WordCount = %d, want 0", m.WordCount)
	}
	if d := m.KeywordDensity["go"]; d != 0 {
		t.Errorf("density on empty content should be 0, got %v", d)
	}
}

func TestComputeContentMetricsWordBoundary(t *testing.T) {
	content := "the cat sat in a category of cats while the cat slept"
	meta := core.PageMetadata{Keywords: []string{"cat"}}

	m := ComputeContentMetrics(content, meta)

	// "cat" appears twice as a whole word; "category" and "cats" do not count.
	want := 2.0 / 12 * 100
	if got := m.KeywordDensity["cat"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("density = %v, want %v", got, want)
	}

	// Repeat analyses reuse the cached matcher and agree.
	again := ComputeContentMetrics(content, meta)
	if got := again.KeywordDensity["cat"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("repeated density = %v, want %v", got, want)
	}
}

func TestComputeContentMetricsCaseInsensitive(t *testing.T) {
	content := "Go is great. GO is fast. I like go."
	meta := core.PageMetadata{Keywords: []string{"Go"}}

	m := ComputeContentMetrics(content, meta)

	if _, ok := m.KeywordDensity["go"]; !ok {
		t.Fatal("keyword should be lowercased in the density map")
	}
	want := 3.0 / 9 * 100
	if got := m.KeywordDensity["go"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("density = %v, want %v", got, want)
	}
}

func TestComputeContentMetricsLengths(t *testing.T) {
	meta := core.PageMetadata{
		Title:           "My Page",
		MetaDescription: "A description",
	}
	m := ComputeContentMetrics("content", meta)
	if m.TitleLength != 7 {
		t.Errorf("TitleLength = %d, want 7", m.TitleLength)
	}
	if m.MetaDescriptionLength != 13 {
		t.Errorf("MetaDescriptionLength = %d, want 13", m.MetaDescriptionLength)
	}
}

func TestComputeContentMetricsLengthsCountCharacters(t *testing.T) {
	// 28 Cyrillic characters, two bytes each: lengths must count
	// characters, not bytes.
	title := "Главная страница нашего сайт"
	meta := core.PageMetadata{
		Title:           title,
		MetaDescription: "Описание",
	}

	m := ComputeContentMetrics("content", meta)
	if m.TitleLength != 28 {
		t.Errorf("TitleLength = %d, want 28", m.TitleLength)
	}
	if m.MetaDescriptionLength != 8 {
		t.Errorf("MetaDescriptionLength = %d, want 8", m.MetaDescriptionLength)
	}
}

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func TestComputeTechnicalFactorsImages(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<img src="a.png" alt="described">
		<img src="b.png" alt="">
		<img src="c.png">
	</body></html>`)

	tf := ComputeTechnicalFactors("https://example.com", doc)
	if tf.ImagesWithoutAlt != 2 {
		t.Errorf("ImagesWithoutAlt = %d, want 2", tf.ImagesWithoutAlt)
	}
}

func TestComputeTechnicalFactorsLinks(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<a href="https://example.com/about">about</a>
		<a href="https://other.com/page">other</a>
		<a href="">self</a>
		<a>nameless anchor</a>
		<a href="/relative">relative</a>
	</body></html>`)

	tf := ComputeTechnicalFactors("https://example.com", doc)

	// Same-host, empty, and missing hrefs are internal. A relative href has
	// no host and so does not match the page host.
	if tf.InternalLinks != 3 {
		t.Errorf("InternalLinks = %d, want 3", tf.InternalLinks)
	}
	if tf.ExternalLinks != 2 {
		t.Errorf("ExternalLinks = %d, want 2", tf.ExternalLinks)
	}
}

func TestComputeTechnicalFactorsHeadings(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<h1>Main</h1>
		<h2>First</h2><h2>Second</h2>
		<h3>Detail</h3>
	</body></html>`)

	tf := ComputeTechnicalFactors("https://example.com", doc)
	want := map[string]int{"h1": 1, "h2": 2, "h3": 1, "h4": 0, "h5": 0, "h6": 0}
	for level, count := range want {
		if tf.HeadingStructure[level] != count {
			t.Errorf("HeadingStructure[%q] = %d, want %d", level, tf.HeadingStructure[level], count)
		}
	}
}

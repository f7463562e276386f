package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"seoscope/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(url string, score int, createdAt time.Time) core.AnalysisRecord {
	return core.AnalysisRecord{
		ID:       uuid.NewString(),
		URL:      url,
		SEOScore: score,
		SubScores: core.SubScores{
			ContentQuality:       80,
			KeywordEffectiveness: 70,
			MetaTags:             90,
			Technical:            60,
		},
		ContentMetrics: core.ContentMetrics{
			WordCount:      450,
			KeywordDensity: map[string]float64{"go": 1.2},
			TitleLength:    40,
		},
		TechnicalFactors: core.TechnicalFactors{
			InternalLinks:    4,
			ExternalLinks:    2,
			HeadingStructure: map[string]int{"h1": 1, "h2": 3},
		},
		Insights: core.QualitativeInsights{
			Strengths: []string{"clear headings"},
		},
		CreatedAt: createdAt,
	}
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	dbPath := filepath.Join(tmpDir, "seoscope.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(invalidPath, []byte("test"), 0644)

	_, err := NewStore(invalidPath)
	if err == nil {
		t.Error("Expected error when creating store in invalid directory")
	}
}

func TestInsertAnalysis_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	record := testRecord("https://example.com", 72, time.Now().UTC().Truncate(time.Second))
	if err := store.InsertAnalysis(record); err != nil {
		t.Fatalf("InsertAnalysis failed: %v", err)
	}

	records, err := store.GetAnalysisHistory("https://example.com", 10)
	if err != nil {
		t.Fatalf("GetAnalysisHistory failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.ID != record.ID || got.SEOScore != 72 {
		t.Errorf("record mismatch: %+v", got)
	}
	if got.SubScores != record.SubScores {
		t.Errorf("SubScores = %+v, want %+v", got.SubScores, record.SubScores)
	}
	if got.ContentMetrics.KeywordDensity["go"] != 1.2 {
		t.Errorf("keyword density not preserved: %+v", got.ContentMetrics)
	}
	if got.TechnicalFactors.HeadingStructure["h2"] != 3 {
		t.Errorf("heading structure not preserved: %+v", got.TechnicalFactors)
	}
	if len(got.Insights.Strengths) != 1 {
		t.Errorf("insights not preserved: %+v", got.Insights)
	}
}

func TestGetAnalysisHistory_OrderAndLimit(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		record := testRecord("https://example.com", 50+i, base.AddDate(0, 0, i))
		if err := store.InsertAnalysis(record); err != nil {
			t.Fatalf("InsertAnalysis failed: %v", err)
		}
	}

	records, err := store.GetAnalysisHistory("https://example.com", 3)
	if err != nil {
		t.Fatalf("GetAnalysisHistory failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Most recent first.
	if records[0].SEOScore != 54 || records[2].SEOScore != 52 {
		t.Errorf("unexpected order: %d, %d, %d",
			records[0].SEOScore, records[1].SEOScore, records[2].SEOScore)
	}

	all, err := store.GetAnalysisHistory("https://example.com", 0)
	if err != nil {
		t.Fatalf("GetAnalysisHistory failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("limit 0 should return all records, got %d", len(all))
	}

	other, err := store.GetAnalysisHistory("https://other.com", 10)
	if err != nil {
		t.Fatalf("GetAnalysisHistory failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unrelated URL should have no history, got %d", len(other))
	}
}

func TestGetScoreSeries_Ascending(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := []int{60, 55, 70}
	for i, score := range scores {
		if err := store.InsertAnalysis(testRecord("https://example.com", score, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("InsertAnalysis failed: %v", err)
		}
	}

	series, err := store.GetScoreSeries("https://example.com")
	if err != nil {
		t.Fatalf("GetScoreSeries failed: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d points, want 3", len(series))
	}
	for i, want := range []float64{60, 55, 70} {
		if series[i].Value != want {
			t.Errorf("point %d value = %v, want %v", i, series[i].Value, want)
		}
	}
	if !series[0].Timestamp.Before(series[2].Timestamp) {
		t.Error("series should be ordered ascending by timestamp")
	}
}

func TestInsertSEOData_PageRankSeries(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, rank := range []float64{1.5, 2.0, 1.8} {
		data := core.SEOData{
			URL:       "https://example.com",
			Title:     "Example",
			Keywords:  []string{"go"},
			PageRank:  rank,
			CreatedAt: base.AddDate(0, 0, i),
		}
		if err := store.InsertSEOData(data); err != nil {
			t.Fatalf("InsertSEOData failed: %v", err)
		}
	}

	series, err := store.GetPageRankSeries("https://example.com")
	if err != nil {
		t.Fatalf("GetPageRankSeries failed: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d points, want 3", len(series))
	}
	if series[0].Value != 1.5 || series[2].Value != 1.8 {
		t.Errorf("unexpected series: %+v", series)
	}
}

func TestGetTrackedURLs(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC()
	for _, url := range []string{"https://b.com", "https://a.com", "https://b.com"} {
		if err := store.InsertAnalysis(testRecord(url, 50, now)); err != nil {
			t.Fatalf("InsertAnalysis failed: %v", err)
		}
	}

	urls, err := store.GetTrackedURLs()
	if err != nil {
		t.Fatalf("GetTrackedURLs failed: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://a.com" || urls[1] != "https://b.com" {
		t.Errorf("GetTrackedURLs = %v", urls)
	}
}

func TestNormalizeSEOData(t *testing.T) {
	data := NormalizeSEOData(core.SEOData{
		URL:             "  https://example.com ",
		Title:           " Example ",
		MetaDescription: " A page.  ",
		H1Tags:          []string{" Heading ", "  "},
		Keywords:        []string{" Go ", "SEO", ""},
	})

	if data.URL != "https://example.com" || data.Title != "Example" || data.MetaDescription != "A page." {
		t.Errorf("text fields not trimmed: %+v", data)
	}
	if len(data.H1Tags) != 1 || data.H1Tags[0] != "Heading" {
		t.Errorf("H1Tags = %v, want [Heading]", data.H1Tags)
	}
	if len(data.Keywords) != 2 || data.Keywords[0] != "go" || data.Keywords[1] != "seo" {
		t.Errorf("Keywords = %v, want lowercased [go seo]", data.Keywords)
	}
	if data.CreatedAt.IsZero() {
		t.Error("zero timestamp should be filled with now")
	}

	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	kept := NormalizeSEOData(core.SEOData{URL: "u", CreatedAt: fixed})
	if !kept.CreatedAt.Equal(fixed) {
		t.Error("existing timestamp should be kept")
	}
	if kept.H1Tags == nil || kept.Keywords == nil {
		t.Error("nil slices should become empty")
	}
}

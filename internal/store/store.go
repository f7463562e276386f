package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"seoscope/internal/core"
)

// Store persists SEO observations and analysis records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "seoscope.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	seoDataTable := `
	CREATE TABLE IF NOT EXISTS seo_data (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		title TEXT,
		meta_description TEXT,
		h1_tags TEXT,
		keywords TEXT,
		page_rank REAL,
		created_at DATETIME
	);`

	analysisTable := `
	CREATE TABLE IF NOT EXISTS seo_analysis (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		seo_score INTEGER,
		sub_scores TEXT,
		content_metrics TEXT,
		technical_factors TEXT,
		insights TEXT,
		created_at DATETIME
	);`

	for _, table := range []string{seoDataTable, analysisTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSEOData stores one observation row for a tracked page.
func (s *Store) InsertSEOData(data core.SEOData) error {
	h1JSON, err := json.Marshal(data.H1Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal h1 tags: %w", err)
	}
	keywordsJSON, err := json.Marshal(data.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	createdAt := data.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO seo_data (id, url, title, meta_description, h1_tags, keywords, page_rank, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), data.URL, data.Title, data.MetaDescription,
		string(h1JSON), string(keywordsJSON), data.PageRank, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert seo data: %w", err)
	}
	return nil
}

// InsertAnalysis stores a completed analysis record.
func (s *Store) InsertAnalysis(record core.AnalysisRecord) error {
	subScoresJSON, err := json.Marshal(record.SubScores)
	if err != nil {
		return fmt.Errorf("failed to marshal sub scores: %w", err)
	}
	metricsJSON, err := json.Marshal(record.ContentMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal content metrics: %w", err)
	}
	technicalJSON, err := json.Marshal(record.TechnicalFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal technical factors: %w", err)
	}
	insightsJSON, err := json.Marshal(record.Insights)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO seo_analysis (id, url, seo_score, sub_scores, content_metrics, technical_factors, insights, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.URL, record.SEOScore,
		string(subScoresJSON), string(metricsJSON), string(technicalJSON), string(insightsJSON),
		record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// GetAnalysisHistory returns up to limit analysis records for a URL, most
// recent first. A limit of 0 or less returns all records.
func (s *Store) GetAnalysisHistory(url string, limit int) ([]core.AnalysisRecord, error) {
	query := `
		SELECT id, url, seo_score, sub_scores, content_metrics, technical_factors, insights, created_at
		FROM seo_analysis WHERE url = ? ORDER BY created_at DESC`
	args := []interface{}{url}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis history: %w", err)
	}
	defer rows.Close()

	var records []core.AnalysisRecord
	for rows.Next() {
		var record core.AnalysisRecord
		var subScoresJSON, metricsJSON, technicalJSON, insightsJSON string

		err := rows.Scan(&record.ID, &record.URL, &record.SEOScore,
			&subScoresJSON, &metricsJSON, &technicalJSON, &insightsJSON, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}

		if err := json.Unmarshal([]byte(subScoresJSON), &record.SubScores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sub scores: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &record.ContentMetrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content metrics: %w", err)
		}
		if err := json.Unmarshal([]byte(technicalJSON), &record.TechnicalFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal technical factors: %w", err)
		}
		if err := json.Unmarshal([]byte(insightsJSON), &record.Insights); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insights: %w", err)
		}

		records = append(records, record)
	}
	return records, rows.Err()
}

// GetScoreSeries returns the composite-score history for a URL as a series
// ordered ascending by timestamp, ready for trend analytics.
func (s *Store) GetScoreSeries(url string) ([]core.SeriesPoint, error) {
	rows, err := s.db.Query(`
		SELECT url, seo_score, created_at FROM seo_analysis
		WHERE url = ? ORDER BY created_at ASC`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query score series: %w", err)
	}
	defer rows.Close()

	var series []core.SeriesPoint
	for rows.Next() {
		var point core.SeriesPoint
		var score int
		if err := rows.Scan(&point.URL, &score, &point.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		point.Value = float64(score)
		series = append(series, point)
	}
	return series, rows.Err()
}

// GetPageRankSeries returns the page-rank history for a URL ordered
// ascending by timestamp.
func (s *Store) GetPageRankSeries(url string) ([]core.SeriesPoint, error) {
	rows, err := s.db.Query(`
		SELECT url, page_rank, created_at FROM seo_data
		WHERE url = ? ORDER BY created_at ASC`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query page rank series: %w", err)
	}
	defer rows.Close()

	var series []core.SeriesPoint
	for rows.Next() {
		var point core.SeriesPoint
		if err := rows.Scan(&point.URL, &point.Value, &point.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan page rank row: %w", err)
		}
		series = append(series, point)
	}
	return series, rows.Err()
}

// GetTrackedURLs lists the distinct URLs that have at least one analysis.
func (s *Store) GetTrackedURLs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT url FROM seo_analysis ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// NormalizeSEOData cleans a raw observation before insert: text fields are
// trimmed, keywords lowercased, a zero timestamp becomes now, and nil slices
// become empty so downstream JSON encoding stays stable.
func NormalizeSEOData(data core.SEOData) core.SEOData {
	data.URL = strings.TrimSpace(data.URL)
	data.Title = strings.TrimSpace(data.Title)
	data.MetaDescription = strings.TrimSpace(data.MetaDescription)

	h1Tags := make([]string, 0, len(data.H1Tags))
	for _, tag := range data.H1Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			h1Tags = append(h1Tags, tag)
		}
	}
	data.H1Tags = h1Tags

	keywords := make([]string, 0, len(data.Keywords))
	for _, keyword := range data.Keywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	data.Keywords = keywords

	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now().UTC()
	}
	return data
}

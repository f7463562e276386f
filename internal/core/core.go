package core

import "time"

// PageMetadata holds the metadata extracted from a fetched page.
type PageMetadata struct {
	Title           string   `json:"title"`            // Contents of the <title> tag
	MetaDescription string   `json:"meta_description"` // Contents of <meta name="description">
	Keywords        []string `json:"keywords"`         // Tracked keywords (meta keywords or user supplied)
	H1Tags          []string `json:"h1_tags"`          // Text of each <h1> on the page
}

// ContentMetrics holds raw statistics computed from page content.
// Created once per analysis run and never mutated afterwards.
type ContentMetrics struct {
	WordCount             int                `json:"word_count"`              // Whitespace-delimited token count
	KeywordDensity        map[string]float64 `json:"keyword_density"`         // Lowercased keyword -> occurrences per 100 words
	TitleLength           int                `json:"title_length"`            // Character length of the title, 0 if absent
	MetaDescriptionLength int                `json:"meta_description_length"` // Character length of the description, 0 if absent
}

// TechnicalFactors holds counts of technical SEO signals from the DOM.
type TechnicalFactors struct {
	ImagesWithoutAlt int            `json:"images_without_alt"` // <img> elements missing an alt attribute
	InternalLinks    int            `json:"internal_links"`     // Anchors pointing at the page's own host
	ExternalLinks    int            `json:"external_links"`     // Anchors pointing at other hosts
	HeadingStructure map[string]int `json:"heading_structure"`  // "h1".."h6" -> count
}

// SubScores holds the five normalized sub-scores, each in [0,100].
// MobileFriendliness is always 0: no mobile signal is computed yet, and the
// composite weighting deliberately keeps its 0.10 slot reserved.
type SubScores struct {
	ContentQuality       float64 `json:"content_quality_score"`
	KeywordEffectiveness float64 `json:"keyword_effectiveness_score"`
	MetaTags             float64 `json:"meta_tags_score"`
	Technical            float64 `json:"technical_score"`
	MobileFriendliness   float64 `json:"mobile_friendliness_score"`
}

// QualitativeInsights is the fixed-shape structured response from the
// insight collaborator. All five lists are empty when the call fails.
type QualitativeInsights struct {
	Strengths                []string `json:"strengths"`
	Improvements             []string `json:"improvements"`
	KeywordRecommendations   []string `json:"keyword_recommendations"`
	ContentSuggestions       []string `json:"content_suggestions"`
	TechnicalRecommendations []string `json:"technical_recommendations"`
}

// Empty reports whether no qualitative insight lists were populated.
func (q QualitativeInsights) Empty() bool {
	return len(q.Strengths) == 0 && len(q.Improvements) == 0 &&
		len(q.KeywordRecommendations) == 0 && len(q.ContentSuggestions) == 0 &&
		len(q.TechnicalRecommendations) == 0
}

// AnalysisRecord is the full result of one analysis run. Records are
// appended to the history store and never mutated after creation.
type AnalysisRecord struct {
	ID               string              `json:"id"`                // Unique identifier for the record
	URL              string              `json:"url"`               // Analyzed page URL
	SEOScore         int                 `json:"seo_score"`         // Composite score, 0-100 integer
	SubScores        SubScores           `json:"sub_scores"`        // The five component scores
	ContentMetrics   ContentMetrics      `json:"content_metrics"`   // Raw content statistics
	TechnicalFactors TechnicalFactors    `json:"technical_factors"` // Raw technical counts
	Insights         QualitativeInsights `json:"qualitative_insights"`
	CreatedAt        time.Time           `json:"created_at"` // When the analysis ran (UTC)
}

// SeriesPoint is a read-only projection of one historical observation,
// ordered ascending by timestamp for forecasting.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	Value     float64   `json:"value"` // Composite score or a single sub-score
}

// AnomalyFlag marks a historical point classified as an outlier.
type AnomalyFlag struct {
	Point SeriesPoint `json:"point"`
	Score float64     `json:"score"` // Outlier score; higher means more anomalous
}

// ForecastPoint is one predicted value with its 95% uncertainty interval.
type ForecastPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	PredictedValue float64   `json:"predicted_value"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
}

// ChangeEvent flags a large relative movement between the two most recent
// observations for a key.
type ChangeEvent struct {
	URL           string    `json:"url"`
	PercentChange float64   `json:"percent_change"` // Fractional, e.g. 0.30 for +30%
	PreviousValue float64   `json:"previous_value"`
	CurrentValue  float64   `json:"current_value"`
	Timestamp     time.Time `json:"timestamp"` // Timestamp of the current observation
}

// TrendInsights bundles the three derived analytics views. It is recomputed
// from the full series on every request and never persisted.
type TrendInsights struct {
	Anomalies []AnomalyFlag   `json:"anomalies"`
	Forecast  []ForecastPoint `json:"forecast"`
	Changes   []ChangeEvent   `json:"changes"`
}

// SEOData is one observation row for a tracked page, the input to the
// history pipeline.
type SEOData struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	H1Tags          []string  `json:"h1_tags"`
	Keywords        []string  `json:"keywords"`
	PageRank        float64   `json:"page_rank"`
	CreatedAt       time.Time `json:"created_at"`
}

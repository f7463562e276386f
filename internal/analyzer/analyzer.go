package analyzer

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"seoscope/internal/core"
	"seoscope/internal/fetch"
	"seoscope/internal/logger"
	"seoscope/internal/metrics"
	"seoscope/internal/scoring"
)

// InsightGenerator is the qualitative-insight collaborator. Implementations
// may fail; the pipeline recovers by carrying empty insight lists.
type InsightGenerator interface {
	AnalyzePage(ctx context.Context, url, content string, meta core.PageMetadata) (core.QualitativeInsights, error)
}

// PageFetcher retrieves and parses a page. *fetch.Fetcher satisfies it.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*fetch.Page, error)
}

// Analyzer runs the full analysis pipeline: fetch, extract, calculate,
// score, enrich.
type Analyzer struct {
	fetcher  PageFetcher
	insights InsightGenerator
}

// New creates an Analyzer. insights may be nil, in which case records carry
// empty qualitative lists.
func New(fetcher PageFetcher, insights InsightGenerator) *Analyzer {
	return &Analyzer{fetcher: fetcher, insights: insights}
}

// Analyze fetches the page at url and analyzes it. Fetch failures are
// surfaced to the caller as *fetch.BlockedError or *fetch.FetchError; no
// partial record is produced in that case.
func (a *Analyzer) Analyze(ctx context.Context, url string) (core.AnalysisRecord, error) {
	page, err := a.fetcher.FetchPage(ctx, url)
	if err != nil {
		return core.AnalysisRecord{}, err
	}
	return a.AnalyzePage(ctx, url, page.Text, page.Metadata, page.Document), nil
}

// AnalyzePage analyzes already-fetched content. This variant never fails:
// the quantitative scores are always delivered, and a failed insight call
// only means the qualitative lists stay empty.
func (a *Analyzer) AnalyzePage(ctx context.Context, url, content string, meta core.PageMetadata, doc *goquery.Document) core.AnalysisRecord {
	contentMetrics := metrics.ComputeContentMetrics(content, meta)

	var technical core.TechnicalFactors
	if doc != nil {
		technical = metrics.ComputeTechnicalFactors(url, doc)
	} else {
		technical = core.TechnicalFactors{HeadingStructure: make(map[string]int)}
	}

	subScores := scoring.ComputeSubScores(contentMetrics, technical)

	record := core.AnalysisRecord{
		ID:               uuid.NewString(),
		URL:              url,
		SEOScore:         scoring.CompositeScore(subScores),
		SubScores:        subScores,
		ContentMetrics:   contentMetrics,
		TechnicalFactors: technical,
		CreatedAt:        time.Now().UTC(),
	}

	if a.insights != nil {
		qualitative, err := a.insights.AnalyzePage(ctx, url, content, meta)
		if err != nil {
			// Degrade, don't fail: the quantitative scores stand on
			// their own.
			logger.Warn("qualitative insight call failed", "url", url, "error", err.Error())
		} else {
			record.Insights = qualitative
		}
	}

	return record
}

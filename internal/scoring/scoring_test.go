package scoring

import (
	"math"
	"testing"

	"seoscope/internal/core"
)

func TestContentQualityScore(t *testing.T) {
	tests := []struct {
		name      string
		wordCount int
		want      float64
	}{
		{"empty page", 0, 0},
		{"half of threshold", 150, 50},
		{"just below threshold", 299, 299.0 / 300 * 100},
		{"at threshold", 300, 30},
		{"long content", 1000, 100},
		{"very long content caps at 100", 5000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contentQualityScore(tt.wordCount)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("contentQualityScore(%d) = %v, want %v", tt.wordCount, got, tt.want)
			}
		})
	}
}

func TestKeywordEffectivenessScore(t *testing.T) {
	if got := keywordEffectivenessScore(nil); got != 0 {
		t.Errorf("no tracked keywords should score 0, got %v", got)
	}

	inBand := map[string]float64{"go": 1.5}
	if got := keywordEffectivenessScore(inBand); got != 100 {
		t.Errorf("density inside the healthy band should score 100, got %v", got)
	}

	stuffed := map[string]float64{"go": 5.0}
	if got := keywordEffectivenessScore(stuffed); got != 30 {
		t.Errorf("over-stuffed keyword should score 30, got %v", got)
	}

	absent := map[string]float64{"go": 0}
	if got := keywordEffectivenessScore(absent); got != 70 {
		t.Errorf("absent keyword should score 70, got %v", got)
	}

	mixed := map[string]float64{"go": 1.5, "cli": 0}
	if got := keywordEffectivenessScore(mixed); got != 85 {
		t.Errorf("mixed densities should average to 85, got %v", got)
	}
}

func TestMetaTagsScore(t *testing.T) {
	if got := metaTagsScore(45, 140); got != 100 {
		t.Errorf("ideal title and description should score 100, got %v", got)
	}

	// Title score 100, description missing: 100 - |140-0| floors at 0.
	if got := metaTagsScore(45, 0); got != 50 {
		t.Errorf("missing description should halve the score, got %v", got)
	}

	// Title missing: 100 - 45*2 = 10. Description ideal: 100.
	if got := metaTagsScore(0, 140); got != 55 {
		t.Errorf("missing title should score 55, got %v", got)
	}

	// Boundary lengths are inside the recommended ranges.
	for _, tl := range []int{30, 60} {
		if got := metaTagsScore(tl, 120); got != 100 {
			t.Errorf("metaTagsScore(%d, 120) = %v, want 100", tl, got)
		}
	}
}

func TestTechnicalScore(t *testing.T) {
	perfect := core.TechnicalFactors{
		InternalLinks:    5,
		HeadingStructure: map[string]int{"h1": 1},
	}
	if got := technicalScore(perfect); got != 100 {
		t.Errorf("clean page should score 100, got %v", got)
	}

	missingAlt := perfect
	missingAlt.ImagesWithoutAlt = 2
	if got := technicalScore(missingAlt); got != 90 {
		t.Errorf("two images without alt should cost 10 points, got %v", got)
	}

	manyMissing := perfect
	manyMissing.ImagesWithoutAlt = 20
	if got := technicalScore(manyMissing); got != 70 {
		t.Errorf("alt penalty should cap at 30 points, got %v", got)
	}

	worst := core.TechnicalFactors{
		ImagesWithoutAlt: 50,
		InternalLinks:    0,
		HeadingStructure: map[string]int{"h1": 3},
	}
	if got := technicalScore(worst); got != 30 {
		t.Errorf("all penalties should stack to 30, got %v", got)
	}
}

func TestComputeSubScoresMobileAlwaysZero(t *testing.T) {
	m := core.ContentMetrics{WordCount: 1000, KeywordDensity: map[string]float64{"go": 1.5}}
	tf := core.TechnicalFactors{InternalLinks: 5, HeadingStructure: map[string]int{"h1": 1}}

	scores := ComputeSubScores(m, tf)
	if scores.MobileFriendliness != 0 {
		t.Errorf("mobile friendliness should always be 0, got %v", scores.MobileFriendliness)
	}
}

func TestCompositeScoreMaximumIs90(t *testing.T) {
	best := core.SubScores{
		ContentQuality:       100,
		KeywordEffectiveness: 100,
		MetaTags:             100,
		Technical:            100,
		MobileFriendliness:   0,
	}
	if got := CompositeScore(best); got != 90 {
		t.Errorf("perfect sub-scores should compose to 90, got %d", got)
	}
}

func TestCompositeScoreTruncates(t *testing.T) {
	s := core.SubScores{ContentQuality: 50} // 12.5 weighted
	if got := CompositeScore(s); got != 12 {
		t.Errorf("composite should truncate 12.5 to 12, got %d", got)
	}
}

func TestScoringIsDeterministic(t *testing.T) {
	m := core.ContentMetrics{
		WordCount:             456,
		KeywordDensity:        map[string]float64{"seo": 0.8, "analytics": 3.1},
		TitleLength:           52,
		MetaDescriptionLength: 101,
	}
	tf := core.TechnicalFactors{
		ImagesWithoutAlt: 3,
		InternalLinks:    2,
		ExternalLinks:    7,
		HeadingStructure: map[string]int{"h1": 2, "h2": 4},
	}

	first := ComputeSubScores(m, tf)
	for i := 0; i < 10; i++ {
		if got := ComputeSubScores(m, tf); got != first {
			t.Fatalf("ComputeSubScores is not deterministic: %+v != %+v", got, first)
		}
	}
	if CompositeScore(first) != CompositeScore(first) {
		t.Fatal("CompositeScore is not deterministic")
	}
}

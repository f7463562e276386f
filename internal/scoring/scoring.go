package scoring

import (
	"math"

	"seoscope/internal/core"
)

// Composite weights for the five sub-scores. They sum to 1.0 and are fixed
// properties of the engine, not per-call configuration. Mobile friendliness
// keeps its 0.10 slot even though no mobile signal is computed yet, so the
// effective maximum composite score is 90.
const (
	WeightContentQuality       = 0.25
	WeightKeywordEffectiveness = 0.25
	WeightMetaTags             = 0.20
	WeightTechnical            = 0.20
	WeightMobileFriendliness   = 0.10
)

// Keyword density band considered healthy, in occurrences per 100 words.
const (
	densityLow  = 0.5
	densityHigh = 2.5
	densityMid  = 1.5
)

// ComputeSubScores maps raw metrics to the five normalized sub-scores.
// Every formula is a deterministic piecewise curve; identical inputs always
// yield identical outputs.
func ComputeSubScores(m core.ContentMetrics, tf core.TechnicalFactors) core.SubScores {
	return core.SubScores{
		ContentQuality:       contentQualityScore(m.WordCount),
		KeywordEffectiveness: keywordEffectivenessScore(m.KeywordDensity),
		MetaTags:             metaTagsScore(m.TitleLength, m.MetaDescriptionLength),
		Technical:            technicalScore(tf),
		MobileFriendliness:   0,
	}
}

// contentQualityScore rewards longer content: one point per ten words from
// 300 words up (capped at 100), scaled linearly below 300.
func contentQualityScore(wordCount int) float64 {
	if wordCount >= 300 {
		return clamp(float64(wordCount) / 10)
	}
	return clamp(float64(wordCount) / 300 * 100)
}

// keywordEffectivenessScore averages a per-keyword score that is 100 inside
// the conventional density band and falls off linearly outside it. No
// tracked keywords means no signal, scored 0.
func keywordEffectivenessScore(density map[string]float64) float64 {
	if len(density) == 0 {
		return 0
	}
	var sum float64
	for _, d := range density {
		if d >= densityLow && d <= densityHigh {
			sum += 100
		} else {
			sum += math.Max(0, 100-math.Abs(d-densityMid)*20)
		}
	}
	return clamp(sum / float64(len(density)))
}

// metaTagsScore averages a title-length score and a description-length
// score, each 100 inside its recommended character range.
func metaTagsScore(titleLen, descLen int) float64 {
	titleScore := 100.0
	if titleLen < 30 || titleLen > 60 {
		titleScore = math.Max(0, 100-math.Abs(45-float64(titleLen))*2)
	}
	descScore := 100.0
	if descLen < 120 || descLen > 155 {
		descScore = math.Max(0, 100-math.Abs(140-float64(descLen)))
	}
	return (titleScore + descScore) / 2
}

// technicalScore starts at 100 and subtracts fixed penalties: up to 30 for
// missing image alt text, 20 for fewer than three internal links, and 20
// when the page does not have exactly one h1. Floored at 0.
func technicalScore(tf core.TechnicalFactors) float64 {
	score := 100.0
	if tf.ImagesWithoutAlt > 0 {
		score -= math.Min(30, float64(tf.ImagesWithoutAlt)*5)
	}
	if tf.InternalLinks < 3 {
		score -= 20
	}
	if tf.HeadingStructure["h1"] != 1 {
		score -= 20
	}
	return math.Max(0, score)
}

// CompositeScore blends the sub-scores into a single 0-100 integer,
// truncated rather than rounded.
func CompositeScore(s core.SubScores) int {
	return int(s.ContentQuality*WeightContentQuality +
		s.KeywordEffectiveness*WeightKeywordEffectiveness +
		s.MetaTags*WeightMetaTags +
		s.Technical*WeightTechnical +
		s.MobileFriendliness*WeightMobileFriendliness)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package analytics

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"seoscope/internal/core"
)

const (
	// Seasonal components switch on only when the series spans enough
	// history to estimate them.
	weeklySeasonMinSpan = 14 * 24 * time.Hour
	yearlySeasonMinSpan = 2 * 365 * 24 * time.Hour
	// 95% interval half-width in residual standard deviations.
	intervalZ = 1.96
)

// Forecast fits an additive model (linear trend plus weekly and, when the
// history allows, yearly seasonal components; no daily component) and
// returns the in-sample fit followed by horizonDays daily predictions past
// the last observation, each with a 95% uncertainty interval. Fewer than
// two points yields an empty result.
func (e *Engine) Forecast(series []core.SeriesPoint, horizonDays int) []core.ForecastPoint {
	if len(series) < 2 {
		return nil
	}
	if horizonDays < 0 {
		horizonDays = 0
	}

	ordered := sortAscending(series)
	origin := ordered[0].Timestamp
	span := ordered[len(ordered)-1].Timestamp.Sub(origin)

	xs := make([]float64, len(ordered))
	ys := make([]float64, len(ordered))
	for i, p := range ordered {
		xs[i] = p.Timestamp.Sub(origin).Hours() / 24
		ys[i] = p.Value
	}

	// A zero span (every observation in the same second) leaves the
	// regression underdetermined; fit a flat level instead.
	var alpha, beta float64
	if span == 0 {
		alpha = stat.Mean(ys, nil)
	} else {
		alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	}

	// Residuals against the trend feed the seasonal estimates.
	residuals := make([]float64, len(ordered))
	for i := range ordered {
		residuals[i] = ys[i] - (alpha + beta*xs[i])
	}

	var weekly *seasonal
	if span >= weeklySeasonMinSpan {
		weekly = fitSeasonal(ordered, residuals, weekdayBucket, 7)
		for i, p := range ordered {
			residuals[i] -= weekly.effect(p.Timestamp)
		}
	}
	var yearly *seasonal
	if span >= yearlySeasonMinSpan {
		yearly = fitSeasonal(ordered, residuals, monthBucket, 12)
		for i, p := range ordered {
			residuals[i] -= yearly.effect(p.Timestamp)
		}
	}

	sigma := stat.StdDev(residuals, nil)
	half := intervalZ * sigma

	predict := func(ts time.Time) core.ForecastPoint {
		x := ts.Sub(origin).Hours() / 24
		value := alpha + beta*x
		if weekly != nil {
			value += weekly.effect(ts)
		}
		if yearly != nil {
			value += yearly.effect(ts)
		}
		return core.ForecastPoint{
			Timestamp:      ts,
			PredictedValue: value,
			LowerBound:     value - half,
			UpperBound:     value + half,
		}
	}

	forecast := make([]core.ForecastPoint, 0, len(ordered)+horizonDays)
	for _, p := range ordered {
		forecast = append(forecast, predict(p.Timestamp))
	}
	last := ordered[len(ordered)-1].Timestamp
	for day := 1; day <= horizonDays; day++ {
		forecast = append(forecast, predict(last.AddDate(0, 0, day)))
	}
	return forecast
}

// seasonal holds a periodic additive component as mean residuals per bucket.
type seasonal struct {
	effects map[int]float64
	bucket  func(time.Time) int
}

func (s *seasonal) effect(ts time.Time) float64 {
	return s.effects[s.bucket(ts)]
}

func fitSeasonal(points []core.SeriesPoint, residuals []float64, bucket func(time.Time) int, buckets int) *seasonal {
	sums := make(map[int]float64, buckets)
	counts := make(map[int]int, buckets)
	for i, p := range points {
		b := bucket(p.Timestamp)
		sums[b] += residuals[i]
		counts[b]++
	}
	effects := make(map[int]float64, buckets)
	for b, sum := range sums {
		effects[b] = sum / float64(counts[b])
	}
	return &seasonal{effects: effects, bucket: bucket}
}

func weekdayBucket(ts time.Time) int { return int(ts.Weekday()) }
func monthBucket(ts time.Time) int   { return int(ts.Month()) }

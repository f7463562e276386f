package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"seoscope/internal/core"
)

// Defaults for the derived analytics views.
const (
	DefaultContamination   = 0.10 // Expected fraction of anomalous points
	DefaultSeed            = 42   // Fixed seed keeps anomaly runs reproducible
	DefaultHorizonDays     = 30
	DefaultChangeThreshold = 0.20
)

// Engine computes derived views over a historical score series. Every
// operation is read-only and recomputed from the full series on each call,
// so concurrent invocations never share state.
type Engine struct {
	Contamination   float64
	Seed            int64
	HorizonDays     int
	ChangeThreshold float64
}

// NewEngine creates an Engine with the default parameters.
func NewEngine() *Engine {
	return &Engine{
		Contamination:   DefaultContamination,
		Seed:            DefaultSeed,
		HorizonDays:     DefaultHorizonDays,
		ChangeThreshold: DefaultChangeThreshold,
	}
}

// Insights bundles anomaly detection, forecasting, and change detection
// over one series.
func (e *Engine) Insights(series []core.SeriesPoint) core.TrendInsights {
	insights := core.TrendInsights{
		Anomalies: e.DetectAnomalies(series),
		Forecast:  e.Forecast(series, e.HorizonDays),
	}
	if change := e.DetectSignificantChange(series, e.ChangeThreshold); change != nil {
		insights.Changes = append(insights.Changes, *change)
	}
	return insights
}

// DetectSignificantChange compares the two most recent points by timestamp
// and emits a ChangeEvent when the relative movement meets the threshold.
// A previous value of zero yields no event: the relative change is
// undefined there, and saturating to a sentinel would drown real signals.
func (e *Engine) DetectSignificantChange(series []core.SeriesPoint, threshold float64) *core.ChangeEvent {
	if len(series) < 2 {
		return nil
	}

	recent := make([]core.SeriesPoint, len(series))
	copy(recent, series)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})

	current, previous := recent[0], recent[1]
	if previous.Value == 0 {
		return nil
	}

	percentChange := (current.Value - previous.Value) / previous.Value
	if abs(percentChange) < threshold {
		return nil
	}

	return &core.ChangeEvent{
		URL:           current.URL,
		PercentChange: percentChange,
		PreviousValue: previous.Value,
		CurrentValue:  current.Value,
		Timestamp:     current.Timestamp,
	}
}

// FormatInsights renders the analytics views as a human-readable report.
func (e *Engine) FormatInsights(insights core.TrendInsights) string {
	var builder strings.Builder

	builder.WriteString("# SEO Trend Insights\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().UTC().Format("2006-01-02 15:04")))

	builder.WriteString("## Significant Changes\n")
	if len(insights.Changes) == 0 {
		builder.WriteString("- No significant changes between the two most recent observations\n")
	}
	for _, change := range insights.Changes {
		direction := "up"
		if change.PercentChange < 0 {
			direction = "down"
		}
		builder.WriteString(fmt.Sprintf("- **%s**: %.1f → %.1f (%s %.1f%%) on %s\n",
			change.URL, change.PreviousValue, change.CurrentValue,
			direction, abs(change.PercentChange)*100,
			change.Timestamp.Format("2006-01-02")))
	}
	builder.WriteString("\n")

	builder.WriteString("## Anomalies\n")
	if len(insights.Anomalies) == 0 {
		builder.WriteString("- No anomalous observations detected\n")
	}
	for _, anomaly := range insights.Anomalies {
		builder.WriteString(fmt.Sprintf("- %s: value %.1f (outlier score %.2f)\n",
			anomaly.Point.Timestamp.Format("2006-01-02"), anomaly.Point.Value, anomaly.Score))
	}
	builder.WriteString("\n")

	builder.WriteString("## Forecast\n")
	if len(insights.Forecast) == 0 {
		builder.WriteString("- Not enough history to forecast (need at least 2 observations)\n")
	} else {
		last := insights.Forecast[len(insights.Forecast)-1]
		builder.WriteString(fmt.Sprintf("- %d points; by %s the score is expected near %.1f (95%% interval %.1f–%.1f)\n",
			len(insights.Forecast), last.Timestamp.Format("2006-01-02"),
			last.PredictedValue, last.LowerBound, last.UpperBound))
	}

	return builder.String()
}

// sortAscending returns a copy of the series ordered by timestamp ascending.
func sortAscending(series []core.SeriesPoint) []core.SeriesPoint {
	ordered := make([]core.SeriesPoint, len(series))
	copy(ordered, series)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

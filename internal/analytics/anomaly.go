package analytics

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"seoscope/internal/core"
)

const (
	isolationTrees     = 100
	isolationSubsample = 256
	// Below this many points an isolation forest has too little to work
	// with; a MAD-based robust z-score takes over.
	isolationMinSamples = 10
	madThreshold        = 3.5
)

// DetectAnomalies flags the points statistically inconsistent with the rest
// of the series. Fewer than two points yields an empty result, never an
// error. With ten or more points an isolation forest over the value feature
// is used with the engine's contamination rate and fixed seed; smaller
// samples fall back to a median-absolute-deviation test.
func (e *Engine) DetectAnomalies(series []core.SeriesPoint) []core.AnomalyFlag {
	if len(series) < 2 {
		return nil
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	if len(series) < isolationMinSamples {
		return madAnomalies(series, values)
	}
	return e.forestAnomalies(series, values)
}

// forestAnomalies scores every point with an isolation forest and flags the
// top contamination fraction.
func (e *Engine) forestAnomalies(series []core.SeriesPoint, values []float64) []core.AnomalyFlag {
	rng := rand.New(rand.NewSource(e.Seed))

	sample := len(values)
	if sample > isolationSubsample {
		sample = isolationSubsample
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample))))

	trees := make([]*isolationNode, isolationTrees)
	for t := range trees {
		subset := subsample(values, sample, rng)
		trees[t] = buildIsolationTree(subset, 0, maxDepth, rng)
	}

	norm := averagePathLength(float64(sample))
	scores := make([]float64, len(values))
	for i, v := range values {
		var total float64
		for _, tree := range trees {
			total += pathLength(tree, v, 0)
		}
		mean := total / float64(len(trees))
		scores[i] = math.Pow(2, -mean/norm)
	}

	flagged := int(math.Ceil(e.Contamination * float64(len(values))))
	if flagged < 1 {
		flagged = 1
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	anomalies := make([]core.AnomalyFlag, 0, flagged)
	for _, idx := range order[:flagged] {
		anomalies = append(anomalies, core.AnomalyFlag{Point: series[idx], Score: scores[idx]})
	}
	sort.Slice(anomalies, func(a, b int) bool {
		return anomalies[a].Point.Timestamp.Before(anomalies[b].Point.Timestamp)
	})
	return anomalies
}

// madAnomalies applies the modified z-score test: points whose deviation
// from the median exceeds 3.5 scaled MADs are flagged. When the MAD is zero
// (at least half the points sit exactly on the median) the score falls back
// to the mean absolute deviation, so a lone outlier in an otherwise-constant
// series is still caught. A fully constant series has nothing to flag.
func madAnomalies(series []core.SeriesPoint, values []float64) []core.AnomalyFlag {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - median)
	}
	sortedDev := append([]float64(nil), deviations...)
	sort.Float64s(sortedDev)
	mad := stat.Quantile(0.5, stat.Empirical, sortedDev, nil)
	meanDev := stat.Mean(deviations, nil)
	if mad == 0 && meanDev == 0 {
		return nil
	}

	var anomalies []core.AnomalyFlag
	for i, v := range values {
		var z float64
		if mad != 0 {
			z = 0.6745 * (v - median) / mad
		} else {
			z = (v - median) / (1.253314 * meanDev)
		}
		if math.Abs(z) > madThreshold {
			anomalies = append(anomalies, core.AnomalyFlag{Point: series[i], Score: math.Abs(z)})
		}
	}
	return anomalies
}

// isolationNode is one node of a single isolation tree over the 1-D value
// feature. Leaves record how many points they isolate.
type isolationNode struct {
	split float64
	left  *isolationNode
	right *isolationNode
	size  int
}

func buildIsolationTree(values []float64, depth, maxDepth int, rng *rand.Rand) *isolationNode {
	if len(values) <= 1 || depth >= maxDepth {
		return &isolationNode{size: len(values)}
	}

	lo, hi := minMax(values)
	if lo == hi {
		return &isolationNode{size: len(values)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}

	return &isolationNode{
		split: split,
		left:  buildIsolationTree(left, depth+1, maxDepth, rng),
		right: buildIsolationTree(right, depth+1, maxDepth, rng),
		size:  len(values),
	}
}

func pathLength(node *isolationNode, v float64, depth int) float64 {
	if node.left == nil {
		// Unresolved leaves are credited the expected depth of a random
		// tree over their remaining points.
		if node.size > 1 {
			return float64(depth) + averagePathLength(float64(node.size))
		}
		return float64(depth)
	}
	if v < node.split {
		return pathLength(node.left, v, depth+1)
	}
	return pathLength(node.right, v, depth+1)
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// BST search, used to normalize isolation depths.
func averagePathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	const eulerMascheroni = 0.5772156649
	harmonic := math.Log(n-1) + eulerMascheroni
	return 2*harmonic - 2*(n-1)/n
}

func subsample(values []float64, size int, rng *rand.Rand) []float64 {
	if size >= len(values) {
		return values
	}
	picked := make([]float64, size)
	perm := rng.Perm(len(values))
	for i := 0; i < size; i++ {
		picked[i] = values[perm[i]]
	}
	return picked
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

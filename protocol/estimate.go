package protocol

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// EstimateTiming derives short, long and sync widths from a raw capture.
// Widths are clustered by sorting them and splitting wherever two neighbours
// differ by more than clusterSplitRatio; the two strongest splits win. The
// median of each cluster becomes the nominal width. Silences beyond base.Gap
// are ignored, and everything except the three widths is copied from base.
func EstimateTiming(widths []time.Duration, base Timing) (Timing, error) {
	xs := make([]float64, 0, len(widths))
	for _, w := range widths {
		if w <= 0 || (base.Gap > 0 && w > base.Gap) {
			continue
		}
		xs = append(xs, float64(w))
	}
	if len(xs) < minEstimateSamples {
		return Timing{}, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPulses, len(xs), minEstimateSamples)
	}
	sort.Float64s(xs)

	type split struct {
		at    int
		ratio float64
	}
	var splits []split
	for i := 1; i < len(xs); i++ {
		if r := xs[i] / xs[i-1]; r >= clusterSplitRatio {
			splits = append(splits, split{at: i, ratio: r})
		}
	}
	if len(splits) == 0 {
		return Timing{}, fmt.Errorf("%w: widths do not separate into short and long", ErrInvalidTiming)
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].ratio > splits[j].ratio })
	if len(splits) > 2 {
		splits = splits[:2]
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].at < splits[j].at })

	bounds := []int{0}
	for _, s := range splits {
		bounds = append(bounds, s.at)
	}
	bounds = append(bounds, len(xs))

	medians := make([]time.Duration, 0, 3)
	for i := 0; i+1 < len(bounds); i++ {
		cluster := xs[bounds[i]:bounds[i+1]]
		medians = append(medians, time.Duration(stat.Quantile(0.5, stat.Empirical, cluster, nil)))
	}

	t := base
	t.Short, t.Long = medians[0], medians[1]
	if len(medians) == 3 {
		t.Sync = medians[2]
	}
	if err := t.Validate(); err != nil {
		return Timing{}, fmt.Errorf("estimated profile: %w", err)
	}
	return t, nil
}

package aggregate

import (
	"math"

	"github.com/gyeh/atexplorer/internal/model"
)

// Histogram splits values into at most maxBins equal-width bins spanning
// [min, max]. Fewer values than maxBins gives one bin per value. A
// constant series yields a single zero-width bin.
func Histogram(values []float64, maxBins int) []model.HistogramBin {
	if len(values) == 0 || maxBins <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []model.HistogramBin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	n := maxBins
	if len(values) < n {
		n = len(values)
	}
	width := (hi - lo) / float64(n)
	bins := make([]model.HistogramBin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}

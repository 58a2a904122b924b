package dataset

import "math"

// AxisStats summarises the values of one dimension of a DataSet
type AxisStats struct {
	Min          float64
	Max          float64
	Mean         float64
	StdDeviation float64
}

// Stats computes the range, mean and population standard deviation of dimension dim.
// An empty or unknown dimension yields the zero value.
func Stats(ds DataSet, dim int) AxisStats {
	values := ds.Values(dim)
	if len(values) == 0 {
		return AxisStats{}
	}

	min, max := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(values))

	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}

	return AxisStats{
		Min:          min,
		Max:          max,
		Mean:         mean,
		StdDeviation: math.Sqrt(sumSquaredDiffs / float64(len(values))),
	}
}

package report

import (
	"github.com/utkarsh5026/seqpar/compare"
)

// Stats aggregates one quantity across iterations.
type Stats struct {
	Min float64 `json:"min" yaml:"min"`
	Avg float64 `json:"avg" yaml:"avg"`
	Max float64 `json:"max" yaml:"max"`
}

// Summary aggregates repeated comparisons of the same batch.
type Summary struct {
	Iterations       int   `json:"iterations" yaml:"iterations"`
	SequentialMs     Stats `json:"sequential_ms" yaml:"sequential_ms"`
	ParallelMs       Stats `json:"parallel_ms" yaml:"parallel_ms"`
	TimeDifferenceMs Stats `json:"time_difference_ms" yaml:"time_difference_ms"`
	Speedup          Stats `json:"speedup" yaml:"speedup"`
}

// Summarize computes min/avg/max over reports. An empty input yields a
// zero Summary.
func Summarize(reports []compare.ComparisonReport) Summary {
	s := Summary{Iterations: len(reports)}
	if len(reports) == 0 {
		return s
	}

	seq := make([]float64, len(reports))
	par := make([]float64, len(reports))
	diff := make([]float64, len(reports))
	speed := make([]float64, len(reports))
	for i, r := range reports {
		seq[i] = float64(r.Sequential.TotalTimeMs)
		par[i] = float64(r.Parallel.TotalTimeMs)
		diff[i] = float64(r.TimeDifferenceMs)
		speed[i] = r.Speedup()
	}

	s.SequentialMs = stats(seq)
	s.ParallelMs = stats(par)
	s.TimeDifferenceMs = stats(diff)
	s.Speedup = stats(speed)
	return s
}

func stats(values []float64) Stats {
	st := Stats{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		st.Min = min(st.Min, v)
		st.Max = max(st.Max, v)
		sum += v
	}
	st.Avg = sum / float64(len(values))
	return st
}

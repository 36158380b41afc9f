package evaluation

import "gonum.org/v1/gonum/stat"

// Scaler standardises columns to zero mean and unit population variance.
// Columns with zero variance keep a scale of 1.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes column statistics of x.
func FitScaler(x [][]float64) *Scaler {
	if len(x) == 0 {
		return &Scaler{}
	}
	p := len(x[0])
	s := &Scaler{Mean: make([]float64, p), Scale: make([]float64, p)}
	col := make([]float64, len(x))
	for j := 0; j < p; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		s.Mean[j], s.Scale[j] = stat.Mean(col, nil), 1
		if len(col) > 1 {
			if _, std := stat.PopMeanStdDev(col, nil); std > 0 {
				s.Scale[j] = std
			}
		}
	}
	return s
}

// Transform returns a standardised copy of x.
func (s *Scaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = r
	}
	return out
}

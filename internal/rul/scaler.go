package rul

import "math"

// Scaler standardises each feature with the mean and population standard
// deviation observed at fit time.
type Scaler struct {
	Mean [numFeatures]float64 `json:"mean"`
	Std  [numFeatures]float64 `json:"std"`
}

func FitScaler(rows [][numFeatures]float64) Scaler {
	var s Scaler
	if len(rows) == 0 {
		for i := range s.Std {
			s.Std[i] = 1
		}
		return s
	}
	n := float64(len(rows))
	for _, r := range rows {
		for i := 0; i < numFeatures; i++ {
			s.Mean[i] += r[i]
		}
	}
	for i := range s.Mean {
		s.Mean[i] /= n
	}
	for _, r := range rows {
		for i := 0; i < numFeatures; i++ {
			d := r[i] - s.Mean[i]
			s.Std[i] += d * d
		}
	}
	for i := range s.Std {
		s.Std[i] = math.Sqrt(s.Std[i] / n)
		// Constant columns pass through centred but unscaled.
		if s.Std[i] == 0 {
			s.Std[i] = 1
		}
	}
	return s
}

func (s Scaler) Transform(x [numFeatures]float64) [numFeatures]float64 {
	var out [numFeatures]float64
	for i := 0; i < numFeatures; i++ {
		out[i] = (x[i] - s.Mean[i]) / s.Std[i]
	}
	return out
}

func (s Scaler) TransformAll(rows [][numFeatures]float64) [][numFeatures]float64 {
	out := make([][numFeatures]float64, len(rows))
	for i, r := range rows {
		out[i] = s.Transform(r)
	}
	return out
}

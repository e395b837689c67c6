package predictor

// Model maps a feature vector to an output vector. Implementations must be
// safe to call from several goroutines at once.
type Model interface {
	Predict(features []float64) []float64
}

// Func adapts a plain function to Model.
type Func func(features []float64) []float64

func (f Func) Predict(features []float64) []float64 {
	return f(features)
}

// Constant always predicts the same outputs.
type Constant []float64

func (c Constant) Predict(_ []float64) []float64 {
	out := make([]float64, len(c))
	copy(out, c)
	return out
}

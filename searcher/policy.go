package searcher

import "math"

type uct struct {
	numerator float64
}

// newUCT prepares UCB1 for children of a node with N visits:
// q/n + c*sqrt(2*ln(N)/n).
func newUCT(c float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: 2 * c * c * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	return q/n + math.Sqrt(u.numerator/n)
}

package forecast

import (
	"errors"
	"fmt"
	"math"
)

// logEpsilon is added before log1p so strictly-zero features stay finite
// and invertible.
const logEpsilon = 1e-9

var (
	ErrNotFitted      = errors.New("normalizer is not fitted")
	ErrAlreadyFitted  = errors.New("normalizer is already fitted")
	ErrWrongDimension = errors.New("vector width does not match fitted state")
)

// Normalizer scales feature vectors into [0, 1] per dimension using ranges
// fitted once on a reference distribution. The optional log-domain transform
// tames features whose magnitudes span several orders (prices vs counts);
// without it, percentage-error metrics explode for near-zero targets.
//
// Fitted state is part of the persisted model artifact. Inference must never
// refit: doing so would make inverse transforms inconsistent across requests.
type Normalizer struct {
	Min      []float64 `json:"min"`
	Max      []float64 `json:"max"`
	LogScale bool      `json:"log_scale"`
}

// NewNormalizer returns an unfitted normalizer.
func NewNormalizer(logScale bool) *Normalizer {
	return &Normalizer{LogScale: logScale}
}

// Fitted reports whether ranges have been established.
func (n *Normalizer) Fitted() bool {
	return len(n.Min) > 0
}

// Fit establishes per-dimension min/max ranges from the given vectors.
// Fitting twice is an error; build a new Normalizer instead.
func (n *Normalizer) Fit(vectors []Vector) error {
	if n.Fitted() {
		return ErrAlreadyFitted
	}
	if len(vectors) == 0 {
		return errors.New("cannot fit on empty input")
	}

	dims := len(vectors[0])
	n.Min = make([]float64, dims)
	n.Max = make([]float64, dims)
	for d := 0; d < dims; d++ {
		n.Min[d] = math.Inf(1)
		n.Max[d] = math.Inf(-1)
	}

	for _, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("inconsistent vector width %d, want %d", len(v), dims)
		}
		for d, x := range v {
			x = n.forward(x)
			if x < n.Min[d] {
				n.Min[d] = x
			}
			if x > n.Max[d] {
				n.Max[d] = x
			}
		}
	}
	return nil
}

// Transform maps vectors into the fitted [0, 1] encoding. The output is a
// pure function of the input and the fitted state.
func (n *Normalizer) Transform(vectors []Vector) ([]Vector, error) {
	if !n.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]Vector, len(vectors))
	for i, v := range vectors {
		if len(v) != len(n.Min) {
			return nil, ErrWrongDimension
		}
		scaled := make(Vector, len(v))
		for d, x := range v {
			scaled[d] = n.scale(n.forward(x), d)
		}
		out[i] = scaled
	}
	return out, nil
}

// InverseQuantity maps a normalized scalar back to raw units of dimension 0
// (quantity). It reconstructs a full-width vector with the scalar in
// dimension 0 and zeros elsewhere, inverts it, and extracts dimension 0.
// Min-max dimensions invert independently, so the zero-fill is harmless.
func (n *Normalizer) InverseQuantity(normalized float64) (float64, error) {
	if !n.Fitted() {
		return 0, ErrNotFitted
	}
	full := make(Vector, len(n.Min))
	full[0] = normalized

	raw := make(Vector, len(full))
	for d, x := range full {
		raw[d] = n.inverse(n.unscale(x, d))
	}
	return raw[0], nil
}

func (n *Normalizer) forward(x float64) float64 {
	if !n.LogScale {
		return x
	}
	return math.Log1p(x + logEpsilon)
}

func (n *Normalizer) inverse(y float64) float64 {
	if !n.LogScale {
		return y
	}
	x := math.Expm1(y) - logEpsilon
	if x < 0 {
		return 0
	}
	return x
}

func (n *Normalizer) scale(x float64, d int) float64 {
	span := n.Max[d] - n.Min[d]
	if span == 0 {
		return 0
	}
	return (x - n.Min[d]) / span
}

func (n *Normalizer) unscale(x float64, d int) float64 {
	return x*(n.Max[d]-n.Min[d]) + n.Min[d]
}

package forecast

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ModelState tracks whether real trained weights are loaded. The service
// checks this instead of detecting "untrained" through exceptions: a fresh
// instance is an explicit branch, not an error path.
type ModelState int

const (
	ModelUntrained ModelState = iota
	ModelLoaded
)

func (s ModelState) String() string {
	if s == ModelLoaded {
		return "loaded"
	}
	return "untrained"
}

// Default layer widths of the stacked recurrent model.
const (
	hidden1   = 128
	hidden2   = 64
	headWidth = 32
)

// untrainedSeed makes the freshly initialized weights deterministic, so an
// unweighted service behaves identically across restarts and in tests.
const untrainedSeed = 1

// LSTMLayer holds the parameters of one recurrent layer. Gate blocks are
// stacked in i, f, g, o order: Wx is [4h][input], Wh is [4h][hidden], B is
// [4h].
type LSTMLayer struct {
	InputSize  int         `json:"input_size"`
	HiddenSize int         `json:"hidden_size"`
	Wx         [][]float64 `json:"wx"`
	Wh         [][]float64 `json:"wh"`
	B          []float64   `json:"b"`
}

// DenseLayer is a fully connected layer with an activation.
type DenseLayer struct {
	W          [][]float64 `json:"w"` // [out][in]
	B          []float64   `json:"b"`
	Activation string      `json:"activation"` // "relu", "tanh" or "linear"
}

// Weights is the full parameter set of the forecasting model:
// LSTM(128) -> LSTM(64) -> attention pooling over time -> Dense(32, relu)
// -> Dense(1, relu). The ReLU output keeps predicted quantities
// non-negative.
type Weights struct {
	Recurrent []LSTMLayer `json:"recurrent"`
	Attention DenseLayer  `json:"attention"` // hidden -> 1, tanh scores
	Head      []DenseLayer `json:"head"`
}

// Predictor runs the sequence model forward over a normalized window and
// yields a single normalized scalar. It is read-only after construction and
// safe for concurrent use.
type Predictor struct {
	state    ModelState
	weights  *Weights
	features int
}

// NewUntrained builds a predictor with deterministic, small random weights.
// Used when no trained artifact is available; its raw output is expected to
// be implausible and is caught downstream by the plausibility guard.
func NewUntrained(features int) *Predictor {
	rng := rand.New(rand.NewSource(untrainedSeed))
	w := &Weights{
		Recurrent: []LSTMLayer{
			initLSTMLayer(features, hidden1, rng),
			initLSTMLayer(hidden1, hidden2, rng),
		},
		Attention: initDenseLayer(hidden2, 1, "tanh", rng),
		Head: []DenseLayer{
			initDenseLayer(hidden2, headWidth, "relu", rng),
			initDenseLayer(headWidth, 1, "relu", rng),
		},
	}
	return &Predictor{state: ModelUntrained, weights: w, features: features}
}

// NewFromWeights builds a predictor around trained weights.
func NewFromWeights(w *Weights) (*Predictor, error) {
	if err := validateWeights(w); err != nil {
		return nil, err
	}
	return &Predictor{
		state:    ModelLoaded,
		weights:  w,
		features: w.Recurrent[0].InputSize,
	}, nil
}

// State reports whether trained weights are loaded.
func (p *Predictor) State() ModelState {
	return p.state
}

// Features returns the expected vector arity.
func (p *Predictor) Features() int {
	return p.features
}

// Weights exposes the parameter set for artifact persistence.
func (p *Predictor) Weights() *Weights {
	return p.weights
}

// Predict runs the window through the model and returns the normalized
// output scalar, guaranteed non-negative by the final ReLU.
func (p *Predictor) Predict(window []Vector) (float64, error) {
	if len(window) == 0 {
		return 0, errors.New("empty window")
	}
	for _, v := range window {
		if len(v) != p.features {
			return 0, fmt.Errorf("vector width %d, model expects %d", len(v), p.features)
		}
	}

	// Stacked recurrent layers, each returning the full sequence.
	seq := make([][]float64, len(window))
	for t, v := range window {
		seq[t] = v
	}
	for i := range p.weights.Recurrent {
		seq = runLSTM(&p.weights.Recurrent[i], seq)
	}

	pooled := attentionPool(&p.weights.Attention, seq)

	out := pooled
	for i := range p.weights.Head {
		out = runDense(&p.weights.Head[i], out)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("head produced %d outputs, want 1", len(out))
	}
	return out[0], nil
}

// runLSTM applies one recurrent layer across the sequence, returning the
// hidden state at every step.
func runLSTM(layer *LSTMLayer, inputs [][]float64) [][]float64 {
	h := make([]float64, layer.HiddenSize)
	c := make([]float64, layer.HiddenSize)
	outputs := make([][]float64, len(inputs))

	for t, x := range inputs {
		newH := make([]float64, layer.HiddenSize)
		newC := make([]float64, layer.HiddenSize)
		for j := 0; j < layer.HiddenSize; j++ {
			i := sigmoid(gate(layer, 0, j, x, h))
			f := sigmoid(gate(layer, 1, j, x, h))
			g := math.Tanh(gate(layer, 2, j, x, h))
			o := sigmoid(gate(layer, 3, j, x, h))

			newC[j] = f*c[j] + i*g
			newH[j] = o * math.Tanh(newC[j])
		}
		h, c = newH, newC
		outputs[t] = h
	}
	return outputs
}

// gate computes the pre-activation of gate block b (0..3) for unit j.
func gate(layer *LSTMLayer, block, j int, x, h []float64) float64 {
	row := block*layer.HiddenSize + j
	sum := layer.B[row]
	for k, xv := range x {
		sum += layer.Wx[row][k] * xv
	}
	for k, hv := range h {
		sum += layer.Wh[row][k] * hv
	}
	return sum
}

// attentionPool collapses the time dimension with softmax-weighted scores,
// so informative steps dominate the pooled representation.
func attentionPool(score *DenseLayer, seq [][]float64) []float64 {
	scores := make([]float64, len(seq))
	maxScore := math.Inf(-1)
	for t, h := range seq {
		scores[t] = runDense(score, h)[0]
		if scores[t] > maxScore {
			maxScore = scores[t]
		}
	}

	// Softmax with max subtraction for stability.
	sum := 0.0
	for t := range scores {
		scores[t] = math.Exp(scores[t] - maxScore)
		sum += scores[t]
	}

	width := len(seq[0])
	pooled := make([]float64, width)
	for t, h := range seq {
		weight := scores[t] / sum
		for d := 0; d < width; d++ {
			pooled[d] += weight * h[d]
		}
	}
	return pooled
}

func runDense(layer *DenseLayer, in []float64) []float64 {
	out := make([]float64, len(layer.W))
	for j, row := range layer.W {
		sum := layer.B[j]
		for k, x := range in {
			sum += row[k] * x
		}
		switch layer.Activation {
		case "relu":
			if sum < 0 {
				sum = 0
			}
		case "tanh":
			sum = math.Tanh(sum)
		}
		out[j] = sum
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func initLSTMLayer(inputSize, hiddenSize int, rng *rand.Rand) LSTMLayer {
	rows := 4 * hiddenSize
	layer := LSTMLayer{
		InputSize:  inputSize,
		HiddenSize: hiddenSize,
		Wx:         initMatrix(rows, inputSize, rng),
		Wh:         initMatrix(rows, hiddenSize, rng),
		B:          make([]float64, rows),
	}
	// Forget-gate bias starts at 1, the usual LSTM initialization.
	for j := 0; j < hiddenSize; j++ {
		layer.B[hiddenSize+j] = 1
	}
	return layer
}

func initDenseLayer(inputSize, outputSize int, activation string, rng *rand.Rand) DenseLayer {
	return DenseLayer{
		W:          initMatrix(outputSize, inputSize, rng),
		B:          make([]float64, outputSize),
		Activation: activation,
	}
}

func initMatrix(rows, cols int, rng *rand.Rand) [][]float64 {
	scale := 1 / math.Sqrt(float64(cols))
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = (rng.Float64()*2 - 1) * scale
		}
	}
	return m
}

func validateWeights(w *Weights) error {
	if w == nil || len(w.Recurrent) == 0 {
		return errors.New("weights missing recurrent layers")
	}
	for i := 1; i < len(w.Recurrent); i++ {
		if w.Recurrent[i].InputSize != w.Recurrent[i-1].HiddenSize {
			return fmt.Errorf("recurrent layer %d input %d does not match previous hidden %d",
				i, w.Recurrent[i].InputSize, w.Recurrent[i-1].HiddenSize)
		}
	}
	if len(w.Head) == 0 {
		return errors.New("weights missing head layers")
	}
	last := w.Head[len(w.Head)-1]
	if len(last.W) != 1 {
		return fmt.Errorf("final head layer has %d outputs, want 1", len(last.W))
	}
	return nil
}

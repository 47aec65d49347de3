package forecast

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// QuantityModel is the learned-model surface the pipeline depends on.
// Tests substitute a stub; production uses *Predictor.
type QuantityModel interface {
	Predict(window []Vector) (float64, error)
	State() ModelState
}

// Options tune the forecast pipeline.
type Options struct {
	Window         int
	Features       int
	SlopeThreshold float64
	LogScale       bool
	Guard          GuardConfig
}

// DefaultOptions mirrors the served configuration.
func DefaultOptions() Options {
	return Options{
		Window:         10,
		Features:       len(CanonicalSchema),
		SlopeThreshold: 10,
		LogScale:       false,
		Guard:          DefaultGuardConfig(),
	}
}

// Service runs the forecast pipeline: reconcile features, build the window,
// normalize, predict, denormalize, guard, classify trend, allocate per
// product and compose the response. It is constructed once and shared across
// requests; the model and fitted scaler are read-only during inference, so
// no locking is needed on the predict path. The one mutable transition
// (fitting the scaler on first use) is guarded by a mutex.
type Service struct {
	opts       Options
	model      QuantityModel
	normalizer *Normalizer
	rng        *rand.Rand
	now        func() time.Time

	fitMu sync.Mutex
}

// NewService wires a pipeline around an explicit model and normalizer.
func NewService(model QuantityModel, normalizer *Normalizer, opts Options, rng *rand.Rand) *Service {
	return &Service{
		opts:       opts,
		model:      model,
		normalizer: normalizer,
		rng:        rng,
		now:        time.Now,
	}
}

// LoadService builds a Service from a persisted artifact, falling back to a
// freshly initialized untrained model when the artifact is missing or
// corrupt. A missing artifact is never fatal.
func LoadService(artifactPath string, opts Options, rng *rand.Rand) *Service {
	artifact, err := LoadArtifact(artifactPath)
	if err != nil {
		log.Printf("Warning: no trained forecast artifact (%v); serving untrained model", err)
		return NewService(NewUntrained(opts.Features), NewNormalizer(opts.LogScale), opts, rng)
	}

	predictor, err := NewFromWeights(artifact.Weights)
	if err != nil {
		log.Printf("Warning: forecast artifact rejected (%v); serving untrained model", err)
		return NewService(NewUntrained(opts.Features), NewNormalizer(opts.LogScale), opts, rng)
	}

	if artifact.Window > 0 {
		opts.Window = artifact.Window
	}
	log.Printf("Loaded forecast model from %s (saved %s)", artifactPath, artifact.SavedAt.Format(time.RFC3339))
	return NewService(predictor, artifact.Scaler, opts, rng)
}

// ModelState reports whether the underlying model carries trained weights.
func (s *Service) ModelState() ModelState {
	return s.model.State()
}

// Window returns the configured lookback length.
func (s *Service) Window() int {
	return s.opts.Window
}

// Forecast runs the full pipeline over an oldest-first invoice history and
// returns the composed result. The history may be any length including
// empty; padding and defaulting guarantee a valid, non-negative integer
// prediction in every case.
func (s *Service) Forecast(history []*models.Invoice) (*models.ForecastResult, error) {
	padded := PadHistory(history, s.opts.Window, s.rng)
	window := padded[len(padded)-s.opts.Window:]

	vectors := make([]Vector, len(window))
	quantities := make([]float64, len(window))
	for i, inv := range window {
		vectors[i] = FromInvoice(inv)
		quantities[i] = vectors[i].Quantity()
	}

	if err := s.ensureFitted(vectors); err != nil {
		return nil, err
	}

	normalized, err := s.normalizer.Transform(vectors)
	if err != nil {
		return nil, err
	}

	rawNormalized, err := s.model.Predict(normalized)
	if err != nil {
		return nil, err
	}

	raw, err := s.normalizer.InverseQuantity(rawNormalized)
	if err != nil {
		return nil, err
	}
	if raw < 0 {
		raw = 0
	}

	historicalMean := mean(quantities)
	recent := quantities
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	trend := ClassifyTrend(quantities, s.opts.SlopeThreshold)

	guarded := ApplyGuard(raw, historicalMean, mean(recent), trend, s.opts.Guard)
	if guarded.Overridden {
		log.Printf("Forecast override: model output %.1f vs historical mean %.1f (ratio %.2f)",
			raw, historicalMean, guarded.ErrorRatio)
	}

	confidence := Confidence(quantities)
	products := Allocate(guarded.Quantity, AggregateProducts(history))

	return ComposeResponse(
		guarded.Quantity,
		trend,
		confidence,
		historicalMean,
		products,
		len(history),
		s.now(),
	), nil
}

// ensureFitted fits the normalizer on the first window it sees when no
// persisted scaler state was loaded. The fit happens exactly once; later
// requests reuse the same ranges so inverse transforms stay consistent.
func (s *Service) ensureFitted(vectors []Vector) error {
	if s.normalizer.Fitted() {
		return nil
	}
	s.fitMu.Lock()
	defer s.fitMu.Unlock()
	if s.normalizer.Fitted() {
		return nil
	}
	if err := s.normalizer.Fit(vectors); err != nil && !errors.Is(err, ErrAlreadyFitted) {
		return err
	}
	return nil
}

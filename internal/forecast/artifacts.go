package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Artifact bundles trained model weights with the fitted normalizer state.
// The two are persisted and loaded together: weights without their scaler
// (or vice versa) would denormalize into the wrong units.
type Artifact struct {
	SavedAt  time.Time   `json:"saved_at"`
	Window   int         `json:"window"`
	Features int         `json:"features"`
	Weights  *Weights    `json:"weights"`
	Scaler   *Normalizer `json:"scaler"`
}

// LoadArtifact reads an artifact from disk. Callers treat any error as
// "no trained model available" and fall back to a fresh untrained instance.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := validateWeights(a.Weights); err != nil {
		return nil, fmt.Errorf("invalid artifact weights: %w", err)
	}
	if a.Scaler == nil || !a.Scaler.Fitted() {
		return nil, fmt.Errorf("artifact has no fitted scaler")
	}
	return &a, nil
}

// SaveArtifact writes the artifact atomically via a temp file rename.
func SaveArtifact(path string, a *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

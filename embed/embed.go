// Package embed maps audio clips to fixed-length speaker vectors.
package embed

import (
	"context"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

const (
	BackendSpectral = "spectral"
	BackendService  = "service"
)

// Embedder returns one vector per clip, in input order. All vectors
// produced by one Embedder share a dimensionality.
type Embedder interface {
	Embed(ctx context.Context, sampleRate int, clips [][]float32) ([][]float64, error)
}

// checkShape verifies the one-vector-per-clip contract.
func checkShape(op string, clips int, vecs [][]float64) error {
	if len(vecs) != clips {
		return errs.Invariant(op, "got %d embeddings for %d clips", len(vecs), clips)
	}
	for i := 1; i < len(vecs); i++ {
		if len(vecs[i]) != len(vecs[0]) {
			return errs.Invariant(op, "embedding %d has dim %d, want %d", i, len(vecs[i]), len(vecs[0]))
		}
	}
	return nil
}

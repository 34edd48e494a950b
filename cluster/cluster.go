// Package cluster partitions speaker embeddings into a fixed number of
// groups.
package cluster

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

const (
	BackendLocal   = "local"
	BackendService = "service"
)

// Clusterer assigns each vector a label in [0, k). Label values carry no
// meaning across calls.
type Clusterer interface {
	Cluster(ctx context.Context, vectors [][]float64, k int) ([]int, error)
}

// Options selects and parameterises a Clusterer.
type Options struct {
	Backend string
	Linkage string
	URL     string
}

// New builds the Clusterer named by opts.Backend.
func New(opts Options, client Client, log logrus.FieldLogger) (Clusterer, error) {
	switch opts.Backend {
	case BackendLocal, "":
		return NewAgglomerative(opts.Linkage)
	case BackendService:
		return NewService(client, opts.URL, opts.Linkage, log)
	}
	return nil, errs.Configuration("cluster.New", "unknown clustering backend %q", opts.Backend)
}

func validateK(op string, k int) error {
	if k < 1 {
		return errs.Configuration(op, "number of speakers must be at least 1, got %d", k)
	}
	return nil
}

// Relabel renumbers labels in order of first appearance so that the first
// vector is always cluster 0.
func Relabel(labels []int) []int {
	seen := make(map[int]int, len(labels))
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := seen[l]
		if !ok {
			id = len(seen)
			seen[l] = id
		}
		out[i] = id
	}
	return out
}

package cluster

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/clients"
	"github.com/maastricht-university/diarize-pipeline/errs"
)

// Client is the part of the model-service client the remote clusterer uses.
type Client interface {
	Cluster(ctx context.Context, url string, features [][]float64, k int, linkage string) (*clients.ClusterResp, error)
}

// Service delegates clustering to the remote /cluster endpoint.
type Service struct {
	client  Client
	url     string
	linkage string
	log     logrus.FieldLogger
}

// NewService builds a remote clusterer.
func NewService(client Client, url, linkage string, log logrus.FieldLogger) (*Service, error) {
	if url == "" {
		return nil, errs.Configuration("cluster.NewService", "services.clustering.url is not set")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{client: client, url: url, linkage: linkage, log: log}, nil
}

func (s *Service) Cluster(ctx context.Context, vectors [][]float64, k int) ([]int, error) {
	const op = "cluster.Service"
	if err := validateK(op, k); err != nil {
		return nil, err
	}
	resp, err := s.client.Cluster(ctx, s.url, vectors, k, s.linkage)
	if err != nil {
		return nil, err
	}
	if len(resp.ClusterLabels) != len(vectors) {
		return nil, errs.Invariant(op, "got %d labels for %d vectors", len(resp.ClusterLabels), len(vectors))
	}
	labels := Relabel(resp.ClusterLabels)
	for _, l := range labels {
		if l >= k {
			return nil, errs.Invariant(op, "service returned more than %d clusters", k)
		}
	}
	s.log.WithField("vectors", len(vectors)).Debug("remote clustering done")
	return labels, nil
}

package embed

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/clients"
	"github.com/maastricht-university/diarize-pipeline/errs"
)

// DefaultBatchSize bounds the clips sent per request.
const DefaultBatchSize = 32

// Client is the part of the model-service client the embedder uses.
type Client interface {
	Embed(ctx context.Context, url string, sampleRate int, clips [][]float32) (*clients.EmbedResp, error)
}

// Service delegates to an external speaker-embedding model.
type Service struct {
	client    Client
	url       string
	batchSize int
	log       logrus.FieldLogger
}

// NewService builds an embedder backed by the model service at url.
func NewService(client Client, url string, batchSize int, log logrus.FieldLogger) (*Service, error) {
	if url == "" {
		return nil, errs.Configuration("embed.NewService", "services.embedding.url is not set")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{client: client, url: url, batchSize: batchSize, log: log}, nil
}

func (s *Service) Embed(ctx context.Context, sampleRate int, clips [][]float32) ([][]float64, error) {
	out := make([][]float64, 0, len(clips))
	for lo := 0; lo < len(clips); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(clips))
		resp, err := s.client.Embed(ctx, s.url, sampleRate, clips[lo:hi])
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != hi-lo {
			return nil, errs.Invariant("embed.Service", "batch [%d:%d] returned %d embeddings", lo, hi, len(resp.Embeddings))
		}
		out = append(out, resp.Embeddings...)
		s.log.WithFields(logrus.Fields{"from": lo, "to": hi}).Debug("embedded batch")
	}
	if err := checkShape("embed.Service", len(clips), out); err != nil {
		return nil, err
	}
	return out, nil
}

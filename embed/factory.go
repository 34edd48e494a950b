package embed

import (
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

// New builds the Embedder named by backend.
func New(backend string, client Client, url string, batchSize int, log logrus.FieldLogger) (Embedder, error) {
	switch backend {
	case BackendSpectral, "":
		return NewSpectral(0), nil
	case BackendService:
		return NewService(client, url, batchSize, log)
	}
	return nil, errs.Configuration("embed.New", "unknown embedding backend %q", backend)
}

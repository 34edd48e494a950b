package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/maastricht-university/diarize-pipeline/audio/audiotest"
	"github.com/maastricht-university/diarize-pipeline/clients"
	"github.com/maastricht-university/diarize-pipeline/errs"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

type recordingClient struct {
	batches []int
	short   bool
	err     error
}

func (c *recordingClient) Embed(_ context.Context, _ string, _ int, clips [][]float32) (*clients.EmbedResp, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.batches = append(c.batches, len(clips))
	resp := &clients.EmbedResp{}
	for _, clip := range clips {
		resp.Embeddings = append(resp.Embeddings, []float64{float64(len(clip)), 1})
	}
	if c.short {
		resp.Embeddings = resp.Embeddings[1:]
	}
	return resp, nil
}

func TestServiceBatchesAndKeepsOrder(t *testing.T) {
	client := &recordingClient{}
	svc, err := NewService(client, "http://embed", 2, quiet())
	require.NoError(t, err)

	clips := [][]float32{make([]float32, 1), make([]float32, 2), make([]float32, 3), make([]float32, 4), make([]float32, 5)}
	vecs, err := svc.Embed(context.Background(), 16000, clips)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, client.batches)
	require.Len(t, vecs, len(clips))
	for i, v := range vecs {
		assert.Equal(t, float64(i+1), v[0])
	}
}

func TestServiceCountMismatch(t *testing.T) {
	svc, err := NewService(&recordingClient{short: true}, "http://embed", 8, quiet())
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), 16000, [][]float32{{1}, {2}})
	assert.ErrorIs(t, err, errs.ErrInvariant)
}

func TestServiceError(t *testing.T) {
	boom := errors.New("down")
	svc, err := NewService(&recordingClient{err: boom}, "http://embed", 8, quiet())
	require.NoError(t, err)
	_, err = svc.Embed(context.Background(), 16000, [][]float32{{1}})
	assert.ErrorIs(t, err, boom)
}

func TestNewServiceRequiresURL(t *testing.T) {
	_, err := NewService(&recordingClient{}, "", 0, quiet())
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestSpectralShapeAndNorm(t *testing.T) {
	s := NewSpectral(0)
	clips := [][]float32{
		audiotest.Tone(16000, 1.5, 180, 0.4),
		audiotest.Tone(16000, 0.01, 180, 0.4), // shorter than one frame
		audiotest.Tone(16000, 1.5, 2500, 0.4),
	}
	vecs, err := s.Embed(context.Background(), 16000, clips)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, s.Dim())
		assert.InDelta(t, 1.0, floats.Norm(v, 2), 1e-9)
	}
}

func TestSpectralSeparatesTimbre(t *testing.T) {
	s := NewSpectral(0)
	low1 := audiotest.Tone(16000, 1.5, 150, 0.5)
	low2 := audiotest.Tone(16000, 1.5, 160, 0.3)
	high := audiotest.Tone(16000, 1.5, 3000, 0.5)

	vecs, err := s.Embed(context.Background(), 16000, [][]float32{low1, low2, high})
	require.NoError(t, err)

	same := floats.Distance(vecs[0], vecs[1], 2)
	diff := floats.Distance(vecs[0], vecs[2], 2)
	assert.Less(t, same, diff)
}

func TestNewBackends(t *testing.T) {
	e, err := New(BackendSpectral, nil, "", 0, quiet())
	require.NoError(t, err)
	assert.IsType(t, &Spectral{}, e)

	e, err = New(BackendService, &recordingClient{}, "http://embed", 4, quiet())
	require.NoError(t, err)
	assert.IsType(t, &Service{}, e)

	_, err = New("onnx", nil, "", 0, quiet())
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

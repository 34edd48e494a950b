package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/diarize-pipeline/audio"
	"github.com/maastricht-university/diarize-pipeline/audio/audiotest"
	"github.com/maastricht-university/diarize-pipeline/cluster"
	"github.com/maastricht-university/diarize-pipeline/embed"
	"github.com/maastricht-university/diarize-pipeline/errs"
	"github.com/maastricht-university/diarize-pipeline/segment"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

type memLoader struct {
	wf  *audio.Waveform
	err error
}

func (m memLoader) Load(string) (*audio.Waveform, error) { return m.wf, m.err }

type staticSegmenter []segment.Span

func (staticSegmenter) Name() string { return "static" }
func (s staticSegmenter) Segment(context.Context, *audio.Waveform) ([]segment.Span, error) {
	return s, nil
}

// levelEmbedder embeds a clip as its mean absolute amplitude.
type levelEmbedder struct{ drop bool }

func (e levelEmbedder) Embed(_ context.Context, _ int, clips [][]float32) ([][]float64, error) {
	out := make([][]float64, 0, len(clips))
	for _, c := range clips {
		var sum float64
		for _, s := range c {
			if s < 0 {
				s = -s
			}
			sum += float64(s)
		}
		out = append(out, []float64{sum / float64(len(c))})
	}
	if e.drop {
		out = out[:len(out)-1]
	}
	return out, nil
}

func levels(rate int, amps ...float32) *audio.Waveform {
	var samples []float32
	for _, a := range amps {
		for i := 0; i < rate; i++ {
			samples = append(samples, a)
		}
	}
	return &audio.Waveform{Path: "mem.wav", Samples: samples, SampleRate: rate, NativeRate: rate, Channels: 1}
}

func newTestPipeline(t *testing.T, d Deps) *Pipeline {
	t.Helper()
	if d.Clusterer == nil {
		c, err := cluster.NewAgglomerative(cluster.LinkageWard)
		require.NoError(t, err)
		d.Clusterer = c
	}
	if d.Embedder == nil {
		d.Embedder = levelEmbedder{}
	}
	if d.NSpeakers == 0 {
		d.NSpeakers = 2
	}
	d.Log = quiet()
	p, err := New(d)
	require.NoError(t, err)
	return p
}

func TestRunLabelsTwoSpeakers(t *testing.T) {
	seg, err := segment.NewFixedWindow(1)
	require.NoError(t, err)
	p := newTestPipeline(t, Deps{
		Loader:    memLoader{wf: levels(100, 0.1, 0.9, 0.1, 0.9, 0.12)},
		Segmenter: seg,
	})

	res, err := p.Run(context.Background(), "mem.wav")
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Len(t, res.Segments, 5)
	assert.Equal(t, []int{0, 1, 0, 1, 0}, []int{
		res.Segments[0].Label, res.Segments[1].Label, res.Segments[2].Label,
		res.Segments[3].Label, res.Segments[4].Label,
	})
	assert.ElementsMatch(t, []int{0, 1}, res.Labels())
	assert.InDelta(t, 5.0, res.AudioDuration, 1e-9)
	assert.InDelta(t, 5.0, res.SpeechDuration(), 1e-9)
	assert.Equal(t, segment.StrategyFixed, res.Strategy)
	for i, s := range res.Segments {
		assert.InDelta(t, float64(i), s.Start, 1e-9)
	}
}

func TestRunNotEnoughSegments(t *testing.T) {
	for _, spans := range []staticSegmenter{nil, {{Start: 0, End: 1}}} {
		p := newTestPipeline(t, Deps{
			Loader:    memLoader{wf: levels(100, 0.5, 0.5)},
			Segmenter: spans,
			Embedder:  levelEmbedder{drop: true}, // must not be called
		})
		res, err := p.Run(context.Background(), "mem.wav")
		require.NoError(t, err)
		assert.True(t, res.Skipped)
		assert.Empty(t, res.Segments)

		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, res))
		assert.NotContains(t, buf.String(), "Speaker")
		assert.Contains(t, buf.String(), NotEnoughSegments)
	}
}

func TestRunEmbedderCountMismatch(t *testing.T) {
	p := newTestPipeline(t, Deps{
		Loader:    memLoader{wf: levels(100, 0.1, 0.9, 0.1)},
		Segmenter: staticSegmenter{{Start: 0, End: 1}, {Start: 1, End: 2}, {Start: 2, End: 3}},
		Embedder:  levelEmbedder{drop: true},
	})
	_, err := p.Run(context.Background(), "mem.wav")
	assert.ErrorIs(t, err, errs.ErrInvariant)
}

func TestRunPropagatesLoaderError(t *testing.T) {
	bad := errs.AudioFormat("audio.Load", errors.New("eof"), "bad file")
	p := newTestPipeline(t, Deps{Loader: memLoader{err: bad}, Segmenter: staticSegmenter{}})
	_, err := p.Run(context.Background(), "x.wav")
	assert.ErrorIs(t, err, errs.ErrAudioFormat)
}

func TestNewRejectsIncompleteDeps(t *testing.T) {
	_, err := New(Deps{NSpeakers: 2})
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	seg, _ := segment.NewFixedWindow(1)
	c, _ := cluster.NewAgglomerative("")
	_, err = New(Deps{Loader: memLoader{}, Segmenter: seg, Embedder: levelEmbedder{}, Clusterer: c, NSpeakers: 0})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestRunEndToEndOnWAV(t *testing.T) {
	const rate = 16000
	dir := t.TempDir()
	low := func() []float32 { return audiotest.Tone(rate, 1.5, 170, 0.5) }
	high := func() []float32 { return audiotest.Tone(rate, 1.5, 2800, 0.5) }
	path := audiotest.WriteWAV(t, dir, "talk.wav", rate, audiotest.Concat(
		low(), high(), low(), high(), audiotest.Silence(rate, 0.7),
	))

	seg, err := segment.NewFixedWindow(1.5)
	require.NoError(t, err)
	p := newTestPipeline(t, Deps{
		Loader:    audio.NewLoader(rate, true, quiet()),
		Segmenter: seg,
		Embedder:  embed.NewSpectral(0),
	})

	res, err := p.Run(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, res.Segments, 4, "trailing 0.7s window is dropped")
	assert.Equal(t, 0, res.Segments[0].Label)
	assert.Equal(t, 1, res.Segments[1].Label)
	assert.Equal(t, 0, res.Segments[2].Label)
	assert.Equal(t, 1, res.Segments[3].Label)
	assert.InDelta(t, 6.7, res.AudioDuration, 1e-9)
}

package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/audio"
	"github.com/maastricht-university/diarize-pipeline/clients"
	"github.com/maastricht-university/diarize-pipeline/cluster"
	cfg "github.com/maastricht-university/diarize-pipeline/config"
	"github.com/maastricht-university/diarize-pipeline/embed"
	"github.com/maastricht-university/diarize-pipeline/errs"
	"github.com/maastricht-university/diarize-pipeline/segment"
)

// MinSegments is the fewest spans clustering accepts.
const MinSegments = 2

type Loader interface {
	Load(path string) (*audio.Waveform, error)
}

type Deps struct {
	Loader    Loader
	Segmenter segment.Segmenter
	Embedder  embed.Embedder
	Clusterer cluster.Clusterer
	NSpeakers int
	Log       logrus.FieldLogger
}

// Pipeline runs load -> segment -> embed -> cluster for one file.
type Pipeline struct {
	loader    Loader
	segmenter segment.Segmenter
	embedder  embed.Embedder
	clusterer cluster.Clusterer
	nSpeakers int
	log       logrus.FieldLogger
}

func New(d Deps) (*Pipeline, error) {
	const op = "orchestrator.New"
	if d.Loader == nil || d.Segmenter == nil || d.Embedder == nil || d.Clusterer == nil {
		return nil, errs.Configuration(op, "pipeline is missing a component")
	}
	if d.NSpeakers < 1 {
		return nil, errs.Configuration(op, "number of speakers must be at least 1, got %d", d.NSpeakers)
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return &Pipeline{
		loader:    d.Loader,
		segmenter: d.Segmenter,
		embedder:  d.Embedder,
		clusterer: d.Clusterer,
		nSpeakers: d.NSpeakers,
		log:       d.Log,
	}, nil
}

// NewPipeline wires a Pipeline from configuration. The access token is
// taken from c.Auth and handed to the segmenter here; nothing below reads
// the environment.
func NewPipeline(c *cfg.Root, log logrus.FieldLogger) (*Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	hc := clients.NewHTTP(cfg.DurSeconds(c.Services.TimeoutSeconds))

	seg, err := segment.New(segment.Options{
		Strategy:    c.Segmentation.Strategy,
		ChunkLength: c.Segmentation.ChunkLength,
		MinDuration: c.Segmentation.MinDuration,
		VADURL:      c.Services.VAD.URL,
		Token:       c.Auth.Token,
	}, hc, log)
	if err != nil {
		return nil, err
	}
	emb, err := embed.New(c.Embedding.Backend, hc, c.Services.Embedding.URL, c.Embedding.BatchSize, log)
	if err != nil {
		return nil, err
	}
	clu, err := cluster.New(cluster.Options{
		Backend: c.Clustering.Backend,
		Linkage: c.Clustering.Linkage,
		URL:     c.Services.Clustering.URL,
	}, hc, log)
	if err != nil {
		return nil, err
	}

	return New(Deps{
		Loader:    audio.NewLoader(c.Audio.SampleRate, c.Audio.Strict, log),
		Segmenter: seg,
		Embedder:  emb,
		Clusterer: clu,
		NSpeakers: c.Clustering.NSpeakers,
		Log:       log,
	})
}

// Run diarizes one file. Fewer than MinSegments spans is not an error: the
// result comes back with Skipped set.
func (p *Pipeline) Run(ctx context.Context, wavPath string) (*Result, error) {
	start := time.Now()
	log := p.log.WithField("file", wavPath)

	wf, err := p.loader.Load(wavPath)
	if err != nil {
		return nil, err
	}

	spans, err := p.segmenter.Segment(ctx, wf)
	if err != nil {
		return nil, err
	}

	res := &Result{
		File:          wavPath,
		AudioDuration: wf.Duration(),
		SampleRate:    wf.SampleRate,
		Strategy:      p.segmenter.Name(),
		NSpeakers:     p.nSpeakers,
	}

	if len(spans) < MinSegments {
		log.WithField("segments", len(spans)).Warn("not enough segments for clustering")
		res.Skipped = true
		return res, nil
	}

	clips := make([][]float32, len(spans))
	for i, s := range spans {
		clips[i] = wf.Slice(s.Start, s.End)
	}

	vecs, err := p.embedder.Embed(ctx, wf.SampleRate, clips)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(spans) {
		return nil, errs.Invariant("orchestrator.Run", "embedder returned %d vectors for %d spans", len(vecs), len(spans))
	}

	labels, err := p.clusterer.Cluster(ctx, vecs, p.nSpeakers)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(spans) {
		return nil, errs.Invariant("orchestrator.Run", "clusterer returned %d labels for %d spans", len(labels), len(spans))
	}

	res.Segments = make([]Segment, len(spans))
	for i, s := range spans {
		res.Segments[i] = Segment{Span: s, Label: labels[i]}
	}

	log.WithFields(logrus.Fields{
		"segments": len(res.Segments),
		"speakers": len(res.Labels()),
		"strategy": res.Strategy,
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Debug("diarized")
	return res, nil
}

package segment

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/audio"
	"github.com/maastricht-university/diarize-pipeline/clients"
	"github.com/maastricht-university/diarize-pipeline/errs"
)

// DefaultMinDuration is the shortest region kept by the VAD segmenter.
// Embedding models are unreliable below it.
const DefaultMinDuration = 0.5

// SpeechDetector is the slice of the model-service client VAD needs.
type SpeechDetector interface {
	VAD(ctx context.Context, url, token, wavPath string) (*clients.VADResp, error)
}

// VAD asks an external voice-activity model for speech regions.
type VAD struct {
	detector    SpeechDetector
	url         string
	token       string
	minDuration float64
	log         logrus.FieldLogger
}

// NewVAD builds the model-driven segmenter. The access token is required.
func NewVAD(detector SpeechDetector, url, token string, minDuration float64, log logrus.FieldLogger) (*VAD, error) {
	const op = "segment.NewVAD"
	if token == "" {
		return nil, errs.Configuration(op, "access token is required for voice-activity detection (set HF_TOKEN)")
	}
	if url == "" {
		return nil, errs.Configuration(op, "services.vad.url is not set")
	}
	if detector == nil {
		return nil, errs.Configuration(op, "no speech detector")
	}
	if minDuration < 0 {
		minDuration = DefaultMinDuration
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &VAD{detector: detector, url: url, token: token, minDuration: minDuration, log: log}, nil
}

func (v *VAD) Name() string { return StrategyVAD }

func (v *VAD) Segment(ctx context.Context, wf *audio.Waveform) ([]Span, error) {
	resp, err := v.detector.VAD(ctx, v.url, v.token, wf.Path)
	if err != nil {
		return nil, err
	}

	regions := append([]clients.Region(nil), resp.Regions...)
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })

	minSamples := int(v.minDuration * float64(wf.SampleRate))
	spans := make([]Span, 0, len(regions))
	var dropped int
	for _, r := range regions {
		lo, hi := wf.SampleIndex(r.Start), wf.SampleIndex(r.End)
		if hi-lo < minSamples || hi <= lo {
			dropped++
			continue
		}
		s := Span{Start: r.Start, End: r.End}
		if limit := wf.Duration(); s.End > limit {
			s.End = limit
		}
		if s.Start < 0 {
			s.Start = 0
		}
		// overlapping regions are trimmed to keep spans disjoint
		if n := len(spans); n > 0 && s.Start < spans[n-1].End {
			s.Start = spans[n-1].End
			if int((s.End-s.Start)*float64(wf.SampleRate)) < minSamples {
				dropped++
				continue
			}
		}
		spans = append(spans, s)
	}

	v.log.WithFields(logrus.Fields{
		"file":    wf.Path,
		"regions": len(regions),
		"kept":    len(spans),
		"dropped": dropped,
	}).Debug("vad segmentation")
	return spans, nil
}

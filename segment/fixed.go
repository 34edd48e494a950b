package segment

import (
	"context"

	"github.com/maastricht-university/diarize-pipeline/audio"
	"github.com/maastricht-university/diarize-pipeline/errs"
)

// FixedWindow cuts the waveform into consecutive windows of Length seconds.
// A trailing window shorter than Length is dropped, never padded.
type FixedWindow struct {
	Length float64
}

// NewFixedWindow validates the window length.
func NewFixedWindow(length float64) (*FixedWindow, error) {
	if length <= 0 {
		return nil, errs.Configuration("segment.NewFixedWindow", "chunk length must be positive, got %g", length)
	}
	return &FixedWindow{Length: length}, nil
}

func (f *FixedWindow) Name() string { return StrategyFixed }

func (f *FixedWindow) Segment(_ context.Context, wf *audio.Waveform) ([]Span, error) {
	win := int(f.Length * float64(wf.SampleRate))
	if win <= 0 {
		return nil, errs.Configuration("segment.FixedWindow", "chunk length %gs is shorter than one sample", f.Length)
	}

	n := len(wf.Samples) / win
	spans := make([]Span, 0, n)
	rate := float64(wf.SampleRate)
	for i := 0; i < n; i++ {
		spans = append(spans, Span{
			Start: float64(i*win) / rate,
			End:   float64((i+1)*win) / rate,
		})
	}
	return spans, nil
}

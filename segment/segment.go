// Package segment turns a waveform into the ordered time spans that get
// embedded and clustered.
package segment

import (
	"context"
	"fmt"

	"github.com/maastricht-university/diarize-pipeline/audio"
)

// Span is a half-open time interval [Start, End) in seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (s Span) Duration() float64 { return s.End - s.Start }

// Valid reports whether the span is non-negative and non-empty.
func (s Span) Valid() bool { return s.Start >= 0 && s.End > s.Start }

func (s Span) String() string { return fmt.Sprintf("[%.2f, %.2f)", s.Start, s.End) }

// Segmenter produces chronologically ordered, non-overlapping spans.
type Segmenter interface {
	Name() string
	Segment(ctx context.Context, wf *audio.Waveform) ([]Span, error)
}

package orchestrator

import (
	"github.com/maastricht-university/diarize-pipeline/segment"
)

// Segment is one labelled span. Label is 0-based.
type Segment struct {
	segment.Span
	Label int `json:"label"`
}

// Result is the diarization of one file. Segments are in chronological
// order. Skipped is set when there were too few spans to cluster; Segments
// is then empty.
type Result struct {
	File          string    `json:"file"`
	AudioDuration float64   `json:"audio_duration_s"`
	SampleRate    int       `json:"sample_rate"`
	Strategy      string    `json:"strategy"`
	NSpeakers     int       `json:"n_speakers"`
	Segments      []Segment `json:"segments"`
	Skipped       bool      `json:"skipped,omitempty"`
}

func (r *Result) SpeechDuration() float64 {
	var total float64
	for _, s := range r.Segments {
		total += s.Duration()
	}
	return total
}

// Labels returns the distinct labels in order of first appearance.
func (r *Result) Labels() []int {
	var out []int
	seen := map[int]bool{}
	for _, s := range r.Segments {
		if !seen[s.Label] {
			seen[s.Label] = true
			out = append(out, s.Label)
		}
	}
	return out
}

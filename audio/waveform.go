package audio

// Waveform is a decoded mono recording.
type Waveform struct {
	Path       string
	Samples    []float32
	SampleRate int
	NativeRate int // rate of the file on disk, before resampling
	Channels   int // channel count of the file on disk
}

// Duration returns the length of the recording in seconds.
func (w *Waveform) Duration() float64 {
	if w.SampleRate == 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// SampleIndex converts a time offset in seconds to a sample index, clamped
// to the waveform bounds.
func (w *Waveform) SampleIndex(sec float64) int {
	i := int(sec * float64(w.SampleRate))
	if i < 0 {
		return 0
	}
	if i > len(w.Samples) {
		return len(w.Samples)
	}
	return i
}

// Slice returns the samples between start and end seconds. The returned
// slice aliases Samples.
func (w *Waveform) Slice(start, end float64) []float32 {
	lo, hi := w.SampleIndex(start), w.SampleIndex(end)
	if lo >= hi {
		return nil
	}
	return w.Samples[lo:hi]
}

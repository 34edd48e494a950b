// Package audio loads WAV recordings into mono float waveforms at the rate
// the embedding model expects.
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

// DefaultSampleRate is the rate speaker-embedding models are trained on.
const DefaultSampleRate = 16000

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Loader reads WAV files. In Strict mode it refuses to resample and fails
// when the native rate differs from TargetRate.
type Loader struct {
	TargetRate int
	Strict     bool
	Log        logrus.FieldLogger
}

func NewLoader(targetRate int, strict bool, log logrus.FieldLogger) *Loader {
	if targetRate <= 0 {
		targetRate = DefaultSampleRate
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{TargetRate: targetRate, Strict: strict, Log: log}
}

// Load decodes path, mixes it down to mono and brings it to TargetRate.
func (l *Loader) Load(path string) (*Waveform, error) {
	const op = "audio.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errs.AudioFormat(op, dec.Err(), "%s is not a valid WAV file", path)
	}
	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, errs.AudioFormat(op, nil, "%s: unsupported WAV encoding %d (want PCM)", path, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errs.AudioFormat(op, err, "decode %s", path)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, errs.AudioFormat(op, nil, "%s: missing format chunk", path)
	}
	if len(buf.Data) == 0 {
		return nil, errs.AudioFormat(op, nil, "%s: no samples", path)
	}

	native := buf.Format.SampleRate
	if l.Strict && native != l.TargetRate {
		return nil, errs.Precondition(op, "%s is sampled at %d Hz, strict mode requires %d Hz", path, native, l.TargetRate)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	mono := mixdown(buf.Data, buf.Format.NumChannels, bitDepth)

	samples := mono
	if native != l.TargetRate {
		samples = Resample(mono, native, l.TargetRate)
		l.Log.WithFields(logrus.Fields{
			"file": path,
			"from": native,
			"to":   l.TargetRate,
		}).Debug("resampled")
	}

	return &Waveform{
		Path:       path,
		Samples:    samples,
		SampleRate: l.TargetRate,
		NativeRate: native,
		Channels:   buf.Format.NumChannels,
	}, nil
}

// mixdown averages interleaved channels and scales integer PCM into [-1, 1].
func mixdown(data []int, channels, bitDepth int) []float32 {
	var scale, offset float64
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		scale, offset = 128, 128
	case 24:
		scale = 1 << 23
	case 32:
		scale = 1 << 31
	default:
		scale = 1 << 15
	}

	frames := len(data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += (float64(data[i*channels+c]) - offset) / scale
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

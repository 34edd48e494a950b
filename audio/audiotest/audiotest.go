// Package audiotest writes synthetic WAV fixtures for tests.
package audiotest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

// WriteWAV encodes mono samples in [-1, 1] as a 16-bit PCM file in dir and
// returns its path.
func WriteWAV(t testing.TB, dir, name string, rate int, samples []float32) string {
	t.Helper()
	return WriteMultiChannel(t, dir, name, rate, 1, samples)
}

// WriteMultiChannel encodes interleaved samples with the given channel count.
func WriteMultiChannel(t testing.TB, dir, name string, rate, channels int, interleaved []float32) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	data := make([]int, len(interleaved))
	for i, s := range interleaved {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(math.Round(float64(s) * 32767))
	}

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	return path
}

// Tone returns seconds of a sine wave at freq Hz with the given amplitude.
func Tone(rate int, seconds, freq, amp float64) []float32 {
	n := int(seconds * float64(rate))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

// Silence returns seconds of zeros.
func Silence(rate int, seconds float64) []float32 {
	return make([]float32, int(seconds*float64(rate)))
}

// Concat joins sample slices.
func Concat(parts ...[]float32) []float32 {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float32, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

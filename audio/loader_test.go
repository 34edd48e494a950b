package audio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/diarize-pipeline/audio"
	"github.com/maastricht-university/diarize-pipeline/audio/audiotest"
	"github.com/maastricht-university/diarize-pipeline/errs"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestLoadMono16k(t *testing.T) {
	dir := t.TempDir()
	path := audiotest.WriteWAV(t, dir, "a.wav", 16000, audiotest.Tone(16000, 2, 220, 0.5))

	wf, err := audio.NewLoader(16000, false, quietLog()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16000, wf.SampleRate)
	assert.Equal(t, 16000, wf.NativeRate)
	assert.Equal(t, 1, wf.Channels)
	assert.Len(t, wf.Samples, 32000)
	assert.InDelta(t, 2.0, wf.Duration(), 1e-9)
	for _, s := range wf.Samples {
		require.LessOrEqual(t, s, float32(0.51))
		require.GreaterOrEqual(t, s, float32(-0.51))
	}
}

func TestLoadResamples(t *testing.T) {
	dir := t.TempDir()
	path := audiotest.WriteWAV(t, dir, "b.wav", 8000, audiotest.Tone(8000, 1.5, 200, 0.3))

	wf, err := audio.NewLoader(16000, false, quietLog()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, wf.NativeRate)
	assert.Equal(t, 16000, wf.SampleRate)
	assert.Len(t, wf.Samples, 24000)
	assert.InDelta(t, 1.5, wf.Duration(), 1e-9)
}

func TestLoadStrictRejectsWrongRate(t *testing.T) {
	dir := t.TempDir()
	path := audiotest.WriteWAV(t, dir, "c.wav", 44100, audiotest.Tone(44100, 0.5, 440, 0.3))

	_, err := audio.NewLoader(16000, true, quietLog()).Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestLoadStereoMixdown(t *testing.T) {
	dir := t.TempDir()
	// left = 0.5, right = -0.5 -> mono ~0
	frames := 1600
	interleaved := make([]float32, 0, frames*2)
	for i := 0; i < frames; i++ {
		interleaved = append(interleaved, 0.5, -0.5)
	}
	path := audiotest.WriteMultiChannel(t, dir, "s.wav", 16000, 2, interleaved)

	wf, err := audio.NewLoader(16000, false, quietLog()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, wf.Channels)
	require.Len(t, wf.Samples, frames)
	assert.InDelta(t, 0, wf.Samples[10], 1e-3)
}

func TestLoadGarbageIsAudioFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not RIFF data"), 0o644))

	_, err := audio.NewLoader(16000, false, quietLog()).Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrAudioFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := audio.NewLoader(16000, false, quietLog()).Load(filepath.Join(t.TempDir(), "nope.wav"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWaveformSliceClamps(t *testing.T) {
	wf := &audio.Waveform{Samples: make([]float32, 100), SampleRate: 10}
	assert.Len(t, wf.Slice(2, 3), 10)
	assert.Len(t, wf.Slice(9, 20), 10)
	assert.Nil(t, wf.Slice(5, 5))
	assert.Nil(t, wf.Slice(-3, 0))
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 2, 3}
	out := audio.Resample(in, 1, 2)
	assert.Equal(t, []float32{0, 0.5, 1, 1.5, 2, 2.5, 3, 3}, out)

	assert.Equal(t, in, audio.Resample(in, 16000, 16000))
	assert.Len(t, audio.Resample(make([]float32, 48000), 48000, 16000), 16000)
}

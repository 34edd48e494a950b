package embed

import (
	"context"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Spectral is an offline embedder: log-mel filterbank energies pooled by
// mean and standard deviation over the clip, L2-normalised. It separates
// voices by timbre only and is no substitute for a trained speaker network,
// but it needs no model service.
type Spectral struct {
	NMels int
}

// NewSpectral returns a Spectral embedder with nMels bands (40 if <= 0).
func NewSpectral(nMels int) *Spectral {
	if nMels <= 0 {
		nMels = 40
	}
	return &Spectral{NMels: nMels}
}

func (s *Spectral) Dim() int { return 2 * s.NMels }

func (s *Spectral) Embed(ctx context.Context, sampleRate int, clips [][]float32) ([][]float64, error) {
	fb := newFilterbank(sampleRate, s.NMels)
	out := make([][]float64, len(clips))
	for i, clip := range clips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = fb.embed(clip)
	}
	if err := checkShape("embed.Spectral", len(clips), out); err != nil {
		return nil, err
	}
	return out, nil
}

type filterbank struct {
	win, hop, nfft int
	window         []float64
	filters        [][]float64
	fft            *fourier.FFT
}

func newFilterbank(sampleRate, nMels int) *filterbank {
	win := max(sampleRate/40, 2) // 25ms
	hop := max(sampleRate/100, 1)
	nfft := 1
	for nfft < win {
		nfft <<= 1
	}
	return &filterbank{
		win:     win,
		hop:     hop,
		nfft:    nfft,
		window:  hann(win),
		filters: melFilters(nfft, nMels, sampleRate),
		fft:     fourier.NewFFT(nfft),
	}
}

func (f *filterbank) embed(clip []float32) []float64 {
	frames := 1
	if len(clip) > f.win {
		frames = (len(clip)-f.win)/f.hop + 1
	}
	nMels := len(f.filters)

	// bands[m][t] so that stat can pool each band over time
	bands := make([][]float64, nMels)
	for m := range bands {
		bands[m] = make([]float64, frames)
	}

	frame := make([]float64, f.nfft)
	power := make([]float64, f.nfft/2+1)
	var coeffs []complex128
	for t := 0; t < frames; t++ {
		start := t * f.hop
		for i := range frame {
			frame[i] = 0
		}
		for i := 0; i < f.win && start+i < len(clip); i++ {
			frame[i] = float64(clip[start+i]) * f.window[i]
		}
		coeffs = f.fft.Coefficients(coeffs, frame)
		for k := range power {
			re, im := real(coeffs[k]), imag(coeffs[k])
			power[k] = re*re + im*im
		}
		for m, filt := range f.filters {
			e := floats.Dot(filt, power)
			if e < 1e-10 {
				e = 1e-10
			}
			bands[m][t] = math.Log(e)
		}
	}

	vec := make([]float64, 2*nMels)
	for m, b := range bands {
		mean, std := stat.MeanStdDev(b, nil)
		if math.IsNaN(std) || math.IsInf(std, 0) {
			std = 0
		}
		vec[m] = mean
		vec[nMels+m] = std
	}
	// centre across bands so the overall level does not dominate
	mu := stat.Mean(vec[:nMels], nil)
	floats.AddConst(-mu, vec[:nMels])

	if n := floats.Norm(vec, 2); n > 0 {
		floats.Scale(1/n, vec)
	}
	return vec
}

func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// melFilters builds HTK-style triangular filters over nfft/2+1 bins.
func melFilters(nfft, nMels, sampleRate int) [][]float64 {
	hzToMel := func(hz float64) float64 { return 2595 * math.Log10(1+hz/700) }
	melToHz := func(mel float64) float64 { return 700 * (math.Pow(10, mel/2595) - 1) }

	bins := nfft/2 + 1
	fMax := float64(sampleRate) / 2
	lo, hi := hzToMel(0), hzToMel(fMax)

	pts := make([]float64, nMels+2)
	for i := range pts {
		pts[i] = melToHz(lo + float64(i)*(hi-lo)/float64(nMels+1))
	}

	filters := make([][]float64, nMels)
	for m := range filters {
		filters[m] = make([]float64, bins)
		for k := 0; k < bins; k++ {
			freq := float64(k) * fMax / float64(bins-1)
			lower := (freq - pts[m]) / (pts[m+1] - pts[m])
			upper := (pts[m+2] - freq) / (pts[m+2] - pts[m+1])
			filters[m][k] = math.Max(0, math.Min(lower, upper))
		}
	}
	return filters
}

// Package onset finds note onsets in mono audio using spectral flux with an
// adaptive threshold.
package onset

import (
	"context"
	"time"
)

const (
	WindowSize = 1024
	HopSize    = 256
)

type Config struct {
	WindowSize int
	HopSize    int
	// ThresholdFrames is the half-width of the moving mean window.
	ThresholdFrames int
	// Multiplier scales the local mean flux; Delta is added as a floor,
	// relative to the strongest flux.
	Multiplier float64
	Delta      float64
	MinGap     time.Duration
}

func DefaultConfig() Config {
	return Config{
		WindowSize:      WindowSize,
		HopSize:         HopSize,
		ThresholdFrames: 8,
		Multiplier:      1.5,
		Delta:           0.05,
		MinGap:          100 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	if c.HopSize <= 0 {
		c.HopSize = d.HopSize
	}
	if c.ThresholdFrames <= 0 {
		c.ThresholdFrames = d.ThresholdFrames
	}
	if c.Multiplier <= 0 {
		c.Multiplier = d.Multiplier
	}
	if c.Delta <= 0 {
		c.Delta = d.Delta
	}
	if c.MinGap < 0 {
		c.MinGap = 0
	}
	return c
}

// Onset is a detected attack.
type Onset struct {
	TimeMs float64
	// Strength is the flux normalised to the strongest onset, in (0, 1].
	Strength float64
	// Freq is the frequency in Hz that gained the most energy.
	Freq float64
}

// Flux returns the half-wave rectified spectral flux of each frame and the
// bin that contributed most to it. Frame 0 has no predecessor and gets zero.
func Flux(spectrogram [][]float64) ([]float64, []int) {
	flux := make([]float64, len(spectrogram))
	dominant := make([]int, len(spectrogram))
	for t := 1; t < len(spectrogram); t++ {
		prev, cur := spectrogram[t-1], spectrogram[t]
		best := 0.0
		for k := range cur {
			d := cur[k] - prev[k]
			if d <= 0 {
				continue
			}
			flux[t] += d
			if d > best {
				best, dominant[t] = d, k
			}
		}
	}
	return flux, dominant
}

// Threshold is the adaptive threshold for flux: the local mean over
// +/- frames times multiplier plus delta times the global maximum.
func Threshold(flux []float64, frames int, multiplier, delta float64) []float64 {
	var maxFlux float64
	for _, f := range flux {
		if f > maxFlux {
			maxFlux = f
		}
	}

	out := make([]float64, len(flux))
	for t := range flux {
		lo, hi := max(0, t-frames), min(len(flux), t+frames+1)
		var sum float64
		for _, f := range flux[lo:hi] {
			sum += f
		}
		out[t] = multiplier*sum/float64(hi-lo) + delta*maxFlux
	}
	return out
}

// Detect returns the onsets of samples in time order.
func Detect(ctx context.Context, samples []float64, sampleRate int, cfg Config) ([]Onset, error) {
	cfg = cfg.withDefaults()
	spec, err := STFT(ctx, samples, cfg.WindowSize, cfg.HopSize)
	if err != nil {
		return nil, err
	}

	flux, dominant := Flux(spec)
	thresh := Threshold(flux, cfg.ThresholdFrames, cfg.Multiplier, cfg.Delta)

	frameMs := float64(cfg.HopSize) * 1000 / float64(sampleRate)
	// flux peaks when the attack crosses the middle of the window
	centreMs := float64(cfg.WindowSize) * 500 / float64(sampleRate)
	binHz := float64(sampleRate) / float64(cfg.WindowSize)
	gapMs := float64(cfg.MinGap) / float64(time.Millisecond)

	var onsets []Onset
	var peak float64
	lastMs := -gapMs - 1
	for t := 1; t < len(flux); t++ {
		f := flux[t]
		if f <= thresh[t] || f < flux[t-1] || (t+1 < len(flux) && f < flux[t+1]) {
			continue
		}
		ms := float64(t)*frameMs + centreMs
		if ms-lastMs < gapMs {
			continue
		}
		lastMs = ms
		onsets = append(onsets, Onset{TimeMs: ms, Strength: f, Freq: float64(dominant[t]) * binHz})
		peak = max(peak, f)
	}

	for i := range onsets {
		onsets[i].Strength /= peak
	}
	return onsets, nil
}

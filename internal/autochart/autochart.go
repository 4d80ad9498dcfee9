// Package autochart turns detected onsets into a playable chart.
package autochart

import (
	"context"
	"math"
	"strconv"

	"github.com/himanishpuri/muzchart/internal/onset"
	"github.com/himanishpuri/muzchart/pkg/beatmap/builder"
)

type Config struct {
	// Subdivision is the grid resolution as a bar divisor; 16 snaps to
	// sixteenth notes.
	Subdivision int
	MinFreq     float64
	MaxFreq     float64
	// Onsets weaker than MinStrength are ignored. Zero means the default.
	MinStrength float64
	Onset       onset.Config
}

func DefaultConfig() Config {
	return Config{
		Subdivision: 16,
		MinFreq:     60,
		MaxFreq:     8000,
		MinStrength: 0.1,
		Onset:       onset.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Subdivision <= 0 {
		c.Subdivision = d.Subdivision
	}
	if c.MinFreq <= 0 {
		c.MinFreq = d.MinFreq
	}
	if c.MinStrength <= 0 {
		c.MinStrength = d.MinStrength
	}
	if c.MaxFreq <= c.MinFreq {
		c.MaxFreq = max(d.MaxFreq, c.MinFreq*2)
	}
	return c
}

// Generate detects onsets in samples and places them on b. It returns the
// number of notes appended.
func Generate(ctx context.Context, b *builder.Builder, samples []float64, sampleRate int, cfg Config) (int, error) {
	cfg = cfg.withDefaults()
	onsets, err := onset.Detect(ctx, samples, sampleRate, cfg.Onset)
	if err != nil {
		return 0, err
	}
	n := Place(b, onsets, cfg)
	b.Meta().Set("bpm", strconv.FormatFloat(b.BPM(), 'f', -1, 64))
	return n, nil
}

// Place snaps onsets to the bar grid at the builder's tempo and appends one
// tap per occupied grid slot. onsets must be in time order.
func Place(b *builder.Builder, onsets []onset.Onset, cfg Config) int {
	cfg = cfg.withDefaults()
	grid := b.TactLength() / float64(cfg.Subdivision)
	numBands := b.Beatmap().NumBands

	placed := 0
	lastSlot := -1
	for _, o := range onsets {
		if o.Strength < cfg.MinStrength {
			continue
		}
		slot := int(math.Round(o.TimeMs / grid))
		if slot <= lastSlot {
			continue
		}
		lastSlot = slot
		b.Seek(float64(slot) * grid).
			Bands(BandFor(o.Freq, numBands, cfg.MinFreq, cfg.MaxFreq)).
			Beat()
		placed++
	}
	return placed
}

// BandFor maps freq onto numBands log-spaced buckets between minFreq and
// maxFreq. Frequencies outside the range go to the edge bands.
func BandFor(freq float64, numBands int, minFreq, maxFreq float64) int {
	if numBands <= 1 || freq <= minFreq {
		return 0
	}
	if freq >= maxFreq {
		return numBands - 1
	}
	pos := math.Log(freq/minFreq) / math.Log(maxFreq/minFreq)
	return min(int(pos*float64(numBands)), numBands-1)
}

// Package builder authors charts in musical time. A Builder keeps a
// playhead in milliseconds, a bar length and the set of active bands, and
// appends notes to a beatmap as the playhead moves:
//
//	b, err := builder.New("demo", 4, resolver, []string{"demo.ogg"})
//	b.SetBPM(120)
//	b.Bands(0).Beat(builder.Fixed(4)).Bands(1, 2).Hold(builder.Fixed(2), builder.Fixed(4))
package builder

import (
	"fmt"
	"io"
	"math"

	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/logger"
	"github.com/himanishpuri/muzchart/pkg/vfs"
)

// DefaultTactLength is the bar length in milliseconds of a new builder (240 BPM).
const DefaultTactLength = 1000.0

type Builder struct {
	bm  *beatmap.Beatmap
	log beatmap.Logger

	pos        float64
	tactLength float64
	bands      []int

	lastAppended int
	err          error
}

type config struct {
	log        beatmap.Logger
	meta       map[string]string
	tactLength float64
}

type Option func(*config)

func WithLogger(log beatmap.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithMeta seeds the chart metadata.
func WithMeta(meta map[string]string) Option {
	return func(c *config) {
		c.meta = meta
	}
}

func WithTactLength(ms float64) Option {
	return func(c *config) {
		c.tactLength = ms
	}
}

func WithBPM(bpm float64) Option {
	return func(c *config) {
		c.tactLength = tactFromBPM(bpm)
	}
}

// New opens the first music candidate that resolves and returns a builder
// whose chart owns the opened handle. Candidates that fail are logged and
// skipped; if none can be opened the error wraps beatmap.ErrNoMusic.
func New(name string, numBands int, r vfs.Resolver, candidates []string, opts ...Option) (*Builder, error) {
	cfg := newConfig(opts)
	node, rc, err := vfs.OpenFirst(r, candidates, cfg.log)
	if err != nil {
		return nil, fmt.Errorf("building %q: %w: %w", name, beatmap.ErrNoMusic, err)
	}
	return newBuilder(name, numBands, rc, node.Name(), cfg), nil
}

// NewWithMusic is New for callers that already hold the music handle.
// music may be nil when only the logical name is known.
func NewWithMusic(name string, numBands int, music io.ReadCloser, musicName string, opts ...Option) *Builder {
	return newBuilder(name, numBands, music, musicName, newConfig(opts))
}

func newConfig(opts []Option) *config {
	cfg := &config{tactLength: DefaultTactLength}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.GetLogger().Named("builder")
	}
	return cfg
}

func newBuilder(name string, numBands int, music io.ReadCloser, musicName string, cfg *config) *Builder {
	bm := beatmap.New(name, numBands)
	bm.Music = musicName
	bm.MusicFile = music
	if len(cfg.meta) > 0 {
		bm.Meta = beatmap.MetadataFrom(cfg.meta)
	}
	return &Builder{
		bm:           bm,
		log:          cfg.log,
		tactLength:   cfg.tactLength,
		lastAppended: -1,
	}
}

func tactFromBPM(bpm float64) float64 {
	return (60000.0 / bpm) * 4.0
}

// BPM is derived from the bar length; a bar is four beats.
func (b *Builder) BPM() float64 {
	return 60000.0 / (b.tactLength / 4.0)
}

func (b *Builder) SetBPM(bpm float64) *Builder {
	b.tactLength = tactFromBPM(bpm)
	return b
}

func (b *Builder) TactLength() float64 { return b.tactLength }

func (b *Builder) SetTactLength(ms float64) *Builder {
	b.tactLength = ms
	return b
}

// Position is the playhead in milliseconds.
func (b *Builder) Position() float64 { return b.pos }

func (b *Builder) Beatmap() *beatmap.Beatmap { return b.bm }

func (b *Builder) Meta() *beatmap.Metadata { return b.bm.Meta }

// Err returns the first decoration error recorded while chaining.
func (b *Builder) Err() error { return b.err }

// Build returns the chart and the first recorded error, if any.
func (b *Builder) Build() (*beatmap.Beatmap, error) {
	return b.bm, b.err
}

// Bands selects the bands the next events go to. Repeated indices are
// dropped with a warning; first-occurrence order is kept.
func (b *Builder) Bands(bands ...int) *Builder {
	seen := make(map[int]bool, len(bands))
	selected := make([]int, 0, len(bands))
	dups := 0
	for _, band := range bands {
		if seen[band] {
			dups++
			continue
		}
		seen[band] = true
		selected = append(selected, band)
	}
	if dups > 0 {
		b.log.Warnf("duplicate values in band selector %v ignored (%d)", bands, dups)
	}
	b.bands = selected
	return b
}

func (b *Builder) ActiveBands() []int {
	return append([]int(nil), b.bands...)
}

// ResolveDelay converts d to milliseconds at the current bar length.
func (b *Builder) ResolveDelay(d Delay) float64 {
	return resolve(d, b.tactLength)
}

func (b *Builder) delay(ds []Delay) float64 {
	return resolve(Compound(ds), b.tactLength)
}

func (b *Builder) emit(holdMs float64, hint bool) {
	hit := int(math.Round(b.pos))
	hold := int(math.Round(holdMs))
	for _, band := range b.bands {
		n := beatmap.NewNote(band, hit, hold)
		n.IsHint = hint
		b.lastAppended = b.bm.Append(n)
	}
}

// Beat places a tap on every active band, then advances by delay.
func (b *Builder) Beat(delay ...Delay) *Builder {
	b.emit(0, false)
	return b.RawPause(b.delay(delay))
}

// Hint places a non-scored guide on every active band, then advances by delay.
func (b *Builder) Hint(delay ...Delay) *Builder {
	b.emit(0, true)
	return b.RawPause(b.delay(delay))
}

// Hold places a hold of length hold on every active band, then advances by
// delay. The advance does not depend on the hold length.
func (b *Builder) Hold(hold Delay, delay ...Delay) *Builder {
	b.emit(b.ResolveDelay(hold), false)
	return b.RawPause(b.delay(delay))
}

// RawHold is Hold with the hold length given in milliseconds.
func (b *Builder) RawHold(holdMs float64, delay ...Delay) *Builder {
	b.emit(holdMs, false)
	return b.RawPause(b.delay(delay))
}

func (b *Builder) Pause(delay ...Delay) *Builder {
	return b.RawPause(b.delay(delay))
}

// RawPause advances the playhead by ms.
func (b *Builder) RawPause(ms float64) *Builder {
	b.pos += ms
	return b
}

// Seek moves the playhead to an absolute position.
func (b *Builder) Seek(ms float64) *Builder {
	b.pos = ms
	return b
}

func (b *Builder) last(what string) (*beatmap.Note, bool) {
	n, ok := b.bm.Note(b.lastAppended)
	if !ok && b.err == nil {
		b.err = fmt.Errorf("%s: %w", what, beatmap.ErrReference)
	}
	return n, ok
}

// Var sets alternate bands on the note appended last.
func (b *Builder) Var(bands ...int) *Builder {
	if n, ok := b.last("var"); ok {
		n.VarBands = append([]int(nil), bands...)
	}
	return b
}

// Ref marks the note appended last as a copy of note index shifted by ofs ms.
func (b *Builder) Ref(index, ofs int) *Builder {
	if n, ok := b.last("ref"); ok {
		if index < 0 || index >= b.lastAppended {
			if b.err == nil {
				b.err = fmt.Errorf("ref %d from note %d: %w", index, b.lastAppended, beatmap.ErrReference)
			}
			return b
		}
		n.SetRef(index)
		n.RefOfs = ofs
	}
	return b
}

// RefVar sets per-copy offset variations on the note appended last.
func (b *Builder) RefVar(ofs ...int) *Builder {
	if n, ok := b.last("refvar"); ok {
		n.RefVarOfs = append([]int(nil), ofs...)
	}
	return b
}

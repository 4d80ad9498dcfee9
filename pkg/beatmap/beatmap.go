// Package beatmap holds the in-memory chart model: notes, the chart that
// owns them, and the normalization steps that run before a chart is
// written or after it has been read.
//
// Construction is deliberately permissive. Append never checks band
// ranges, time ordering or reference targets; Fix, ApplyMeta and Validate
// are where those concerns live.
package beatmap

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

const (
	// DefaultNoteRate is the scroll-speed scalar given to new charts.
	DefaultNoteRate = 1.0

	// MetaName is the only metadata key promoted into a structured field.
	MetaName = "name"
)

// Beatmap is a chart: header fields, free-form metadata and an ordered
// note sequence. Insertion order is authoring or parse order.
type Beatmap struct {
	Name     string
	NumBands int
	Music    string
	NoteRate float64
	Meta     *Metadata

	// MusicFile is the opened music resource. The Beatmap owns it and
	// releases it in Close.
	MusicFile io.ReadCloser

	notes []Note
}

// New returns an empty chart. numBands below 1 is replaced by the
// placeholder 1.
func New(name string, numBands int) *Beatmap {
	if numBands < 1 {
		numBands = 1
	}
	return &Beatmap{
		Name:     name,
		NumBands: numBands,
		NoteRate: DefaultNoteRate,
		Meta:     NewMetadata(),
	}
}

// Append adds n to the end of the sequence and returns its index.
func (b *Beatmap) Append(n Note) int {
	b.notes = append(b.notes, n)
	return len(b.notes) - 1
}

func (b *Beatmap) Len() int { return len(b.notes) }

// Note returns a pointer to the note at i for in-place decoration.
func (b *Beatmap) Note(i int) (*Note, bool) {
	if i < 0 || i >= len(b.notes) {
		return nil, false
	}
	return &b.notes[i], true
}

// Notes returns the note sequence. Callers must not append to it.
func (b *Beatmap) Notes() []Note { return b.notes }

// Duration is the latest end time of any note.
func (b *Beatmap) Duration() int {
	end := 0
	for _, n := range b.notes {
		if e := n.EndTime(); e > end {
			end = e
		}
	}
	return end
}

// Close releases the owned music handle. Calling it twice is harmless.
func (b *Beatmap) Close() error {
	if b == nil || b.MusicFile == nil {
		return nil
	}
	err := b.MusicFile.Close()
	b.MusicFile = nil
	return err
}

// SortByTime orders notes by hit time, keeping authoring order for ties,
// and rewrites Ref indices so every reference still points at the same note.
func (b *Beatmap) SortByTime() {
	order := make([]int, len(b.notes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return b.notes[order[i]].HitTime < b.notes[order[j]].HitTime
	})

	newIndex := make([]int, len(order))
	sorted := make([]Note, len(order))
	for to, from := range order {
		newIndex[from] = to
		sorted[to] = b.notes[from]
	}
	for i := range sorted {
		if r := sorted[i].Ref(); r >= 0 && r < len(newIndex) {
			sorted[i].SetRef(newIndex[r])
		}
	}
	b.notes = sorted
}

// Mirror returns a copy with every band flipped across the playfield.
// The music handle is not shared with the copy.
func (b *Beatmap) Mirror() *Beatmap {
	m := New(b.Name, b.NumBands)
	m.Music = b.Music
	m.NoteRate = b.NoteRate
	m.Meta = b.Meta.Clone()
	flip := func(band int) int { return b.NumBands - 1 - band }

	for _, n := range b.notes {
		c := n.Clone()
		c.Band = flip(c.Band)
		for i := range c.VarBands {
			c.VarBands[i] = flip(c.VarBands[i])
		}
		m.Append(c)
	}
	return m
}

// Validate checks band ranges, hit times and reference direction. It is a
// consumer-side check; nothing in this module calls it implicitly.
func (b *Beatmap) Validate() error {
	var errs []error
	for i, n := range b.notes {
		if n.Band < 0 || n.Band >= b.NumBands {
			errs = append(errs, fmt.Errorf("note %d: band %d outside [0, %d)", i, n.Band, b.NumBands))
		}
		if n.HitTime < 0 {
			errs = append(errs, fmt.Errorf("note %d: negative hit time %d", i, n.HitTime))
		}
		if n.HoldTime < 0 {
			errs = append(errs, fmt.Errorf("note %d: negative hold time %d", i, n.HoldTime))
		}
		if n.IsRef() && n.Ref() >= i {
			errs = append(errs, fmt.Errorf("note %d: reference %d does not point backward: %w", i, n.Ref(), ErrReference))
		}
		for _, vb := range n.VarBands {
			if vb < 0 || vb >= b.NumBands {
				errs = append(errs, fmt.Errorf("note %d: variation band %d outside [0, %d)", i, vb, b.NumBands))
			}
		}
	}
	return errors.Join(errs...)
}

// Equal reports whether two charts carry the same header fields, notes and
// metadata pairs. Metadata order and the music handle are ignored.
func (b *Beatmap) Equal(o *Beatmap) bool {
	if b.Name != o.Name || b.NumBands != o.NumBands || b.Music != o.Music || b.NoteRate != o.NoteRate {
		return false
	}
	if len(b.notes) != len(o.notes) {
		return false
	}
	for i := range b.notes {
		if !b.notes[i].Equal(o.notes[i]) {
			return false
		}
	}
	return b.Meta.Equal(o.Meta)
}

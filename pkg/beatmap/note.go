package beatmap

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// NoRef is the reference index of a note that reuses nothing. It is also
// what the text format uses for an absent reference.
const NoRef = -1

// Note is a single scorable or guide event. Times are in milliseconds.
// The zero value is a tap on band 0 at time 0 with no reference.
type Note struct {
	Band     int
	HitTime  int
	HoldTime int // 0 for a tap
	IsHint   bool

	// VarBands is an alternate band placement used for mirrored layouts.
	// nil means no variation.
	VarBands []int

	// ref is the index of the reused note plus one, so 0 means none.
	ref       int
	RefOfs    int
	RefVarOfs []int
}

func NewNote(band, hitTime, holdTime int) Note {
	return Note{Band: band, HitTime: hitTime, HoldTime: holdTime}
}

func NewHint(band, hitTime, holdTime int) Note {
	n := NewNote(band, hitTime, holdTime)
	n.IsHint = true
	return n
}

func (n Note) IsHold() bool { return n.HoldTime > 0 }

func (n Note) IsRef() bool { return n.ref > 0 }

// Ref is the index of an earlier note this one reuses, or NoRef.
func (n Note) Ref() int { return n.ref - 1 }

// SetRef makes the note reuse note index. A negative index clears it.
func (n *Note) SetRef(index int) {
	if index < 0 {
		n.ClearRef()
		return
	}
	n.ref = index + 1
}

// ClearRef drops the reference along with its offsets.
func (n *Note) ClearRef() {
	n.ref = 0
	n.RefOfs = 0
	n.RefVarOfs = nil
}

// EndTime is the hit time plus the hold length.
func (n Note) EndTime() int { return n.HitTime + n.HoldTime }

// Clone returns a deep copy.
func (n Note) Clone() Note {
	n.VarBands = slices.Clone(n.VarBands)
	n.RefVarOfs = slices.Clone(n.RefVarOfs)
	return n
}

// Equal compares every field. A nil and an empty slice are treated alike.
func (n Note) Equal(o Note) bool {
	return n.Band == o.Band &&
		n.HitTime == o.HitTime &&
		n.HoldTime == o.HoldTime &&
		n.IsHint == o.IsHint &&
		slices.Equal(n.VarBands, o.VarBands) &&
		n.ref == o.ref &&
		n.RefOfs == o.RefOfs &&
		slices.Equal(n.RefVarOfs, o.RefVarOfs)
}

func (n Note) String() string {
	kind := "note"
	if n.IsHint {
		kind = "hint"
	}
	s := fmt.Sprintf("%s band=%d hit=%d", kind, n.Band, n.HitTime)
	if n.HoldTime > 0 {
		s += fmt.Sprintf(" hold=%d", n.HoldTime)
	}
	if n.IsRef() {
		s += fmt.Sprintf(" ref=%d%+d", n.Ref(), n.RefOfs)
	}
	return s
}

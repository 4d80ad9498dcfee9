package beatmap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) Debugf(string, ...any) {}
func (r *recordingLogger) Infof(string, ...any)  {}
func (r *recordingLogger) Errorf(format string, args ...any) {
	r.Warnf(format, args...)
}
func (r *recordingLogger) Warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func TestNewUsesPlaceholderBands(t *testing.T) {
	bm := New("", 0)
	assert.Equal(t, 1, bm.NumBands)
	assert.Equal(t, DefaultNoteRate, bm.NoteRate)
	assert.Equal(t, 0, bm.Len())
	assert.NotNil(t, bm.Meta)
}

func TestAppendKeepsOrderWithoutValidation(t *testing.T) {
	bm := New("chart", 4)
	assert.Equal(t, 0, bm.Append(NewNote(3, 500, 0)))
	assert.Equal(t, 1, bm.Append(NewNote(9, 100, 0)))
	assert.Equal(t, 2, bm.Append(NewHint(-1, 200, 50)))

	notes := bm.Notes()
	require.Len(t, notes, 3)
	assert.Equal(t, []int{500, 100, 200}, []int{notes[0].HitTime, notes[1].HitTime, notes[2].HitTime})
	assert.True(t, notes[2].IsHint)
	assert.Equal(t, NoRef, notes[0].Ref())
}

func TestMetadataLastWriteWins(t *testing.T) {
	md := NewMetadata()
	md.Set("title", "first")
	md.Set("artist", "someone")
	md.Set("title", "second")

	assert.Equal(t, 2, md.Len())
	assert.Equal(t, []string{"title", "artist"}, md.Keys())
	assert.Equal(t, []string{"artist", "title"}, md.SortedKeys())
	v, ok := md.Get("title")
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	md.Delete("title")
	assert.Equal(t, []string{"artist"}, md.Keys())
}

func TestMetadataEqualIgnoresOrder(t *testing.T) {
	a := NewMetadata()
	a.Set("x", "1")
	a.Set("y", "2")
	b := MetadataFrom(map[string]string{"y": "2", "x": "1"})
	assert.True(t, a.Equal(b))
	b.Set("z", "3")
	assert.False(t, a.Equal(b))
}

func TestFixNormalizesReferencesAndMeta(t *testing.T) {
	bm := New("Song Chart", 4)
	first := NewNote(0, 0, -5)
	first.SetRef(0)
	first.RefOfs = 40
	first.VarBands = []int{}
	bm.Append(first)

	second := NewNote(1, 100, 0)
	second.SetRef(0)
	second.RefOfs = 1000
	bm.Append(second)

	bm.Meta.Set("long key", "line one\nline two")
	bm.Meta.Set("", "dropped")

	log := &recordingLogger{}
	bm.Fix(log)

	n0, _ := bm.Note(0)
	assert.Equal(t, NoRef, n0.Ref())
	assert.Equal(t, 0, n0.RefOfs)
	assert.Equal(t, 0, n0.HoldTime)
	assert.Nil(t, n0.VarBands)

	n1, _ := bm.Note(1)
	assert.Equal(t, 0, n1.Ref())
	assert.Equal(t, 1000, n1.RefOfs)

	v, ok := bm.Meta.Get("long_key")
	assert.True(t, ok)
	assert.Equal(t, "line one line two", v)
	name, _ := bm.Meta.Get(MetaName)
	assert.Equal(t, "Song Chart", name)
	assert.Equal(t, 2, bm.Meta.Len())
	assert.NotEmpty(t, log.warnings)
}

func TestFixDerivesMusicFromHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.ogg")
	require.NoError(t, os.WriteFile(path, []byte("ogg"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)

	bm := New("", 2)
	bm.MusicFile = f
	bm.Fix(nil)
	assert.Equal(t, "track.ogg", bm.Music)

	require.NoError(t, bm.Close())
	require.NoError(t, bm.Close())
}

func TestApplyMetaPromotesNameOnly(t *testing.T) {
	bm := New("", 4)
	bm.Meta.Set(MetaName, "From Meta")
	bm.Meta.Set("artist", "Somebody")
	bm.ApplyMeta()

	assert.Equal(t, "From Meta", bm.Name)
	v, ok := bm.Meta.Get(MetaName)
	assert.True(t, ok)
	assert.Equal(t, "From Meta", v)
	assert.Equal(t, 2, bm.Meta.Len())

	named := New("Explicit", 4)
	named.Meta.Set(MetaName, "ignored")
	named.ApplyMeta()
	assert.Equal(t, "Explicit", named.Name)
}

func TestSortByTimeRewritesReferences(t *testing.T) {
	bm := New("s", 4)
	bm.Append(NewNote(0, 300, 0)) // 0
	bm.Append(NewNote(1, 100, 0)) // 1
	ref := NewNote(2, 400, 0)
	ref.SetRef(1)
	bm.Append(ref) // 2

	bm.SortByTime()
	notes := bm.Notes()
	assert.Equal(t, []int{100, 300, 400}, []int{notes[0].HitTime, notes[1].HitTime, notes[2].HitTime})
	assert.Equal(t, 0, notes[2].Ref())
	assert.Equal(t, 1, notes[0].Band)
}

func TestMirrorFlipsBands(t *testing.T) {
	bm := New("m", 4)
	n := NewNote(0, 0, 0)
	n.VarBands = []int{1, 3}
	bm.Append(n)

	m := bm.Mirror()
	got, _ := m.Note(0)
	assert.Equal(t, 3, got.Band)
	assert.Equal(t, []int{2, 0}, got.VarBands)

	orig, _ := bm.Note(0)
	assert.Equal(t, []int{1, 3}, orig.VarBands)
}

func TestValidateReportsProblems(t *testing.T) {
	bm := New("v", 2)
	bm.Append(NewNote(5, -1, 0))
	fwd := NewNote(0, 10, 0)
	fwd.SetRef(4)
	bm.Append(fwd)

	err := bm.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReference))
	assert.Contains(t, err.Error(), "band 5")
	assert.Contains(t, err.Error(), "negative hit time")

	ok := New("ok", 2)
	ok.Append(NewNote(1, 0, 0))
	assert.NoError(t, ok.Validate())
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "song", NameFromPath("/charts/beatmaps/song.beatmap"))
	assert.Equal(t, "a.b", NameFromPath("a.b.c"))
	assert.Equal(t, "plain", NameFromPath("plain"))
}

func TestZeroNoteIsNotReference(t *testing.T) {
	var n Note
	assert.False(t, n.IsRef())
	assert.Equal(t, NoRef, n.Ref())

	n.SetRef(2)
	n.RefOfs = 50
	assert.True(t, n.IsRef())
	assert.Equal(t, 2, n.Ref())

	n.SetRef(NoRef)
	assert.False(t, n.IsRef())
	assert.Equal(t, 0, n.RefOfs)
	assert.True(t, n.Equal(Note{}))
}

func TestFixKeepsLiteralNotesUnreferenced(t *testing.T) {
	bm := New("lit", 2)
	bm.Append(NewNote(0, 0, 0))
	bm.Append(Note{Band: 1, HitTime: 10})

	bm.Fix(nil)
	n, _ := bm.Note(1)
	assert.False(t, n.IsRef())
	assert.Equal(t, NoRef, n.Ref())
}

func TestFixChartNameOverridesMetaName(t *testing.T) {
	bm := New("A", 2)
	bm.Meta.Set(MetaName, "B")

	log := &recordingLogger{}
	bm.Fix(log)
	v, _ := bm.Meta.Get(MetaName)
	assert.Equal(t, "A", v)
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], `"B"`)

	log.warnings = nil
	bm.Fix(log)
	assert.Empty(t, log.warnings)
}

package midichart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/himanishpuri/muzchart/pkg/beatmap/builder"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// testSong is 480 ticks per quarter: 120 BPM, then 60 BPM from tick 1920.
func testSong(t *testing.T) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(120, midi.NoteOff(0, 60))
	tr.Add(360, midi.NoteOn(0, 61, 100))
	tr.Add(960, midi.NoteOff(0, 61))
	tr.Add(480, smf.MetaTempo(60))
	tr.Add(480, midi.NoteOn(0, 63, 90))
	tr.Add(60, midi.NoteOff(0, 63))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestConvertFollowsTempoMap(t *testing.T) {
	s, err := smf.ReadFrom(bytes.NewReader(testSong(t)))
	require.NoError(t, err)

	b := builder.NewWithMusic("midi", 4, nil, "song.ogg", builder.WithLogger(nopLogger{}))
	n, err := Convert(s, b, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	type got struct{ band, hit, hold int }
	var notes []got
	for _, note := range b.Beatmap().Notes() {
		notes = append(notes, got{note.Band, note.HitTime, note.HoldTime})
	}
	assert.Equal(t, []got{{0, 0, 0}, {1, 500, 1000}, {3, 3000, 0}}, notes)

	bpm, ok := b.Meta().Get("bpm")
	assert.True(t, ok)
	assert.Equal(t, "120", bpm)
	assert.InDelta(t, 120.0, b.BPM(), 1e-9)
}

func TestConvertChannelFilter(t *testing.T) {
	s, err := smf.ReadFrom(bytes.NewReader(testSong(t)))
	require.NoError(t, err)

	b := builder.NewWithMusic("midi", 4, nil, "song.ogg", builder.WithLogger(nopLogger{}))
	n, err := Convert(s, b, Options{Channel: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, b.Beatmap().Len())
}

func TestConvertMinHold(t *testing.T) {
	s, err := smf.ReadFrom(bytes.NewReader(testSong(t)))
	require.NoError(t, err)

	b := builder.NewWithMusic("midi", 4, nil, "song.ogg", builder.WithLogger(nopLogger{}))
	_, err = Convert(s, b, Options{MinHoldMs: 100, Channel: -1})
	require.NoError(t, err)
	first, _ := b.Beatmap().Note(0)
	assert.Equal(t, 125, first.HoldTime)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mid")
	require.NoError(t, os.WriteFile(path, testSong(t), 0o644))

	s, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Tracks, 1)

	bad := filepath.Join(dir, "bad.mid")
	require.NoError(t, os.WriteFile(bad, []byte("not midi"), 0o644))
	_, err = ReadFile(bad)
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(dir, "missing.mid"))
	assert.Error(t, err)
}

func TestCollectOrdersUnterminatedNotesByChannel(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, midi.NoteOn(3, 60, 100))
	tr.Add(0, midi.NoteOn(1, 60, 100))
	tr.Add(0, midi.NoteOn(2, 60, 100))
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Close(480)
	require.NoError(t, s.Add(tr))
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	read, err := smf.ReadFrom(&buf)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		spans, _ := collect(read, -1)
		require.Len(t, spans, 4)
		var order [][2]uint8
		for _, sp := range spans {
			assert.Equal(t, sp.startMicro, sp.endMicro)
			order = append(order, [2]uint8{sp.key, sp.channel})
		}
		assert.Equal(t, [][2]uint8{{60, 1}, {60, 2}, {60, 3}, {64, 0}}, order)
	}
}

func TestConvertNil(t *testing.T) {
	b := builder.NewWithMusic("midi", 4, nil, "song.ogg", builder.WithLogger(nopLogger{}))
	_, err := Convert(nil, b, DefaultOptions())
	assert.Error(t, err)
}

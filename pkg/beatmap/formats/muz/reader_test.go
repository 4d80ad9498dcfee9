package muz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/himanishpuri/muzchart/pkg/beatmap"
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

func (r *recordingLogger) saw(substr string) bool {
	for _, w := range r.warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func read(t *testing.T, src string, bare bool) (*beatmap.Beatmap, *recordingLogger, error) {
	t.Helper()
	log := &recordingLogger{}
	bm, err := Read(strings.NewReader(src), "charts/test.beatmap", Options{Bare: bare, Logger: log})
	return bm, log, err
}

func TestReadMinimalChart(t *testing.T) {
	bm, log, err := read(t, "version 1\nessential 1 4 song.ogg\nrate 800\nnote 0 0\n", false)
	require.NoError(t, err)
	assert.Empty(t, log.warnings)

	require.Equal(t, 1, bm.Len())
	n, _ := bm.Note(0)
	assert.Equal(t, 0, n.Band)
	assert.Equal(t, 0, n.HitTime)
	assert.Equal(t, 0, n.HoldTime)
	assert.False(t, n.IsHint)
	assert.Equal(t, beatmap.NoRef, n.Ref())

	assert.Equal(t, 4, bm.NumBands)
	assert.Equal(t, "song.ogg", bm.Music)
	assert.Equal(t, 800.0, bm.NoteRate)
	assert.Equal(t, "test", bm.Name)
}

func TestReadFullNoteBlock(t *testing.T) {
	src := strings.Join([]string{
		"# comment",
		"version 1",
		"",
		"essential 3 5 my song.ogg",
		"meta title A Title With Spaces",
		"meta name Chart Name",
		"note 0 100",
		"hint 4 200 150",
		"var 1 2",
		"note 2 300",
		"ref 0 1000",
		"refvar 10 -10",
	}, "\r\n")

	bm, log, err := read(t, src, false)
	require.NoError(t, err)
	assert.Empty(t, log.warnings)

	assert.Equal(t, "my song.ogg", bm.Music)
	assert.Equal(t, "Chart Name", bm.Name)
	title, _ := bm.Meta.Get("title")
	assert.Equal(t, "A Title With Spaces", title)

	require.Equal(t, 3, bm.Len())
	hint, _ := bm.Note(1)
	assert.True(t, hint.IsHint)
	assert.Equal(t, 150, hint.HoldTime)
	assert.Equal(t, []int{1, 2}, hint.VarBands)

	ref, _ := bm.Note(2)
	assert.Equal(t, 0, ref.Ref())
	assert.Equal(t, 1000, ref.RefOfs)
	assert.Equal(t, []int{10, -10}, ref.RefVarOfs)
}

func TestReadFinalLineWithoutNewline(t *testing.T) {
	bm, _, err := read(t, "version 1\nessential 1 2 a.ogg\nnote 1 50", false)
	require.NoError(t, err)
	assert.Equal(t, 1, bm.Len())
}

func TestReadStatementBeforeVersion(t *testing.T) {
	_, _, err := read(t, "essential 1 4 song.ogg\nversion 1\nnote 0 0\n", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, beatmap.ErrStructure))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, "essential", perr.Statement)
}

func TestReadDecorationWithoutNote(t *testing.T) {
	for _, stmt := range []string{"var 0 1", "ref 0 100", "refvar 5"} {
		t.Run(stmt, func(t *testing.T) {
			_, _, err := read(t, "version 1\nessential 1 4 song.ogg\n"+stmt+"\nnote 0 0\n", false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, beatmap.ErrReference))
			assert.False(t, errors.Is(err, beatmap.ErrStructure))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, 3, perr.Line)
		})
	}
}

func TestReadUnknownStatementIsIgnored(t *testing.T) {
	bm, log, err := read(t, "version 1\nessential 2 4 song.ogg\nnote 0 0\nfoo bar\nnote 1 10\n", false)
	require.NoError(t, err)
	assert.Equal(t, 2, bm.Len())
	assert.True(t, log.saw(`unknown statement "foo"`))
}

func TestReadDuplicateEssentialKeepsFirst(t *testing.T) {
	bm, log, err := read(t, "version 1\nessential 1 4 first.ogg\nessential 9 7 second.ogg\nnote 0 0\n", false)
	require.NoError(t, err)
	assert.Equal(t, 4, bm.NumBands)
	assert.Equal(t, "first.ogg", bm.Music)
	assert.True(t, log.saw("duplicate 'essential'"))
}

func TestReadDuplicateAndMismatchedVersionWarn(t *testing.T) {
	_, log, err := read(t, "version 2\nversion 1\nessential 1 4 a.ogg\nnote 0 0\n", false)
	require.NoError(t, err)
	assert.True(t, log.saw("unsupported version"))
	assert.True(t, log.saw("duplicate 'version'"))
}

func TestReadTruncatedWarns(t *testing.T) {
	bm, log, err := read(t, "version 1\nessential 5 4 a.ogg\nnote 0 0\n", false)
	require.NoError(t, err)
	assert.Equal(t, 1, bm.Len())
	assert.True(t, log.saw("premature EOF"))
}

func TestReadEmptyOrHeaderless(t *testing.T) {
	cases := map[string]string{
		"no essential": "version 1\nmeta a b\n",
		"zero notes":   "version 1\nessential 0 4 a.ogg\n",
		"empty stream": "",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := read(t, src, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, beatmap.ErrStructure))
		})
	}
}

func TestReadMalformedNumbers(t *testing.T) {
	cases := []string{
		"version 1\nessential x 4 a.ogg\n",
		"version 1\nessential 1 4\n",
		"version 1\nessential 1 4 a.ogg\nnote zero 0\n",
		"version 1\nessential 1 4 a.ogg\nnote 0\n",
		"version 1\nessential 1 4 a.ogg\nrate fast\n",
		"version 1\nessential 1 4 a.ogg\nnote 0 0\nvar\n",
	}
	for _, src := range cases {
		_, _, err := read(t, src, false)
		require.Error(t, err, src)
		assert.True(t, errors.Is(err, beatmap.ErrStructure), src)
	}
}

func TestReadNotesBeforeEssentialAreSkipped(t *testing.T) {
	bm, _, err := read(t, "version 1\nnote 3 3\nessential 1 4 a.ogg\nnote 0 0\n", false)
	require.NoError(t, err)
	require.Equal(t, 1, bm.Len())
	n, _ := bm.Note(0)
	assert.Equal(t, 0, n.Band)
}

func TestReadBareModeReadsMetadataOnly(t *testing.T) {
	src := "version 1\nessential 2 4 song.ogg\nmeta title Probe\nrate 2.5\nnote 0 0\nnote 1 100\n"
	bm, _, err := read(t, src, true)
	require.NoError(t, err)
	assert.Equal(t, 0, bm.Len())
	assert.Equal(t, 1, bm.NumBands)
	assert.Equal(t, "", bm.Music)
	assert.Equal(t, 2.5, bm.NoteRate)
	title, _ := bm.Meta.Get("title")
	assert.Equal(t, "Probe", title)

	_, _, err = read(t, "version 1\nmeta title X\n", true)
	assert.NoError(t, err)
}

func TestReadBareModeDecorationFails(t *testing.T) {
	_, _, err := read(t, "version 1\nessential 1 4 a.ogg\nnote 0 0\nvar 1\n", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, beatmap.ErrReference))
}

func TestReadMetaLastWriteWins(t *testing.T) {
	bm, _, err := read(t, "version 1\nessential 1 4 a.ogg\nmeta k one\nmeta k two\nmeta empty\nnote 0 0\n", false)
	require.NoError(t, err)
	v, _ := bm.Meta.Get("k")
	assert.Equal(t, "two", v)
	empty, ok := bm.Meta.Get("empty")
	assert.True(t, ok)
	assert.Equal(t, "", empty)
	assert.Equal(t, 2, bm.Meta.Len())
}

func TestReadInvalidUTF8(t *testing.T) {
	_, _, err := read(t, "version 1\nmeta bad \xff\xfe\n", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, beatmap.ErrStructure))
}

func TestReadNegativeHoldBecomesTap(t *testing.T) {
	bm, log, err := read(t, "version 1\nessential 1 2 a.ogg\nnote 0 0 -5\n", false)
	require.NoError(t, err)
	n, _ := bm.Note(0)
	assert.Equal(t, 0, n.HoldTime)
	assert.True(t, log.saw("negative hold"))
}

func TestReadNegativeReferenceIndex(t *testing.T) {
	bm, log, err := read(t, "version 1\nessential 3 2 a.ogg\nnote 0 0\nnote 1 10\nref -1 5\nnote 1 20\nref -4 5\n", false)
	require.NoError(t, err)
	require.Equal(t, 3, bm.Len())

	n1, _ := bm.Note(1)
	assert.False(t, n1.IsRef())
	assert.Equal(t, 0, n1.RefOfs)
	n2, _ := bm.Note(2)
	assert.False(t, n2.IsRef())
	assert.Len(t, log.warnings, 1)
	assert.True(t, log.saw("negative index"))
}

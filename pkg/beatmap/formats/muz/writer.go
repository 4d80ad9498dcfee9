package muz

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/beatmap/formats"
)

// Write fixes bm and encodes it canonically: header comment, version,
// essential, rate, metadata sorted by key, then one block per note.
func Write(bm *beatmap.Beatmap, w io.Writer, log beatmap.Logger) (formats.ExportInfo, error) {
	if log == nil {
		log = defaultLogger()
	}
	bm.Fix(log)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# generated by %s\n", Generator)
	fmt.Fprintf(bw, "version %s\n", Version)
	fmt.Fprintf(bw, "essential %d %d %s\n", bm.Len(), bm.NumBands, bm.Music)
	fmt.Fprintf(bw, "rate %s\n", strconv.FormatFloat(bm.NoteRate, 'f', -1, 64))

	for _, key := range bm.Meta.SortedKeys() {
		val, _ := bm.Meta.Get(key)
		fmt.Fprintf(bw, "meta %s %s\n", key, val)
	}

	for _, n := range bm.Notes() {
		kind := "note"
		if n.IsHint {
			kind = "hint"
		}
		if n.HoldTime != 0 {
			fmt.Fprintf(bw, "%s %d %d %d\n", kind, n.Band, n.HitTime, n.HoldTime)
		} else {
			fmt.Fprintf(bw, "%s %d %d\n", kind, n.Band, n.HitTime)
		}
		if n.VarBands != nil {
			fmt.Fprintf(bw, "var%s\n", intList(n.VarBands))
		}
		if n.IsRef() {
			fmt.Fprintf(bw, "ref %d %d\n", n.Ref(), n.RefOfs)
		}
		if n.RefVarOfs != nil {
			fmt.Fprintf(bw, "refvar%s\n", intList(n.RefVarOfs))
		}
	}

	if err := bw.Flush(); err != nil {
		return formats.ExportInfo{}, fmt.Errorf("muz: writing %s: %w", bm.Name, err)
	}
	return ExportInfoFor(bm), nil
}

// ExportInfoFor returns the library-relative paths a chart and its music
// are exported to.
func ExportInfoFor(bm *beatmap.Beatmap) formats.ExportInfo {
	musicStem := strings.TrimSuffix(bm.Music, path.Ext(bm.Music))
	return formats.ExportInfo{
		Name:      bm.Name,
		ChartPath: path.Join(Location, bm.Name+"."+Extension),
		MusicPath: path.Join(Location, musicStem),
	}
}

func intList(vals []int) string {
	var sb strings.Builder
	for _, v := range vals {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

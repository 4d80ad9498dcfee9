// Package formats keeps track of the chart codecs available to loaders and
// exporters, keyed by file extension.
package formats

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/himanishpuri/muzchart/pkg/beatmap"
)

// ExportInfo tells a caller where a written chart and its music belong
// relative to a library root.
type ExportInfo struct {
	Name      string
	ChartPath string
	MusicPath string
}

type ReadFunc func(r io.Reader, filename string, bare bool, log beatmap.Logger) (*beatmap.Beatmap, error)

type WriteFunc func(bm *beatmap.Beatmap, w io.Writer, log beatmap.Logger) (ExportInfo, error)

type Format struct {
	Name       string
	Extensions []string
	// Locations are library subdirectories searched for charts of this format.
	Locations []string
	Read      ReadFunc
	Write     WriteFunc
}

var (
	mu       sync.RWMutex
	registry []Format
)

// Register adds f. Later registrations win on extension clashes.
func Register(f Format) {
	mu.Lock()
	defer mu.Unlock()
	registry = append([]Format{f}, registry...)
}

func All() []Format {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Format(nil), registry...)
}

// ByExtension finds the codec for ext, with or without the leading dot.
func ByExtension(ext string) (Format, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	mu.RLock()
	defer mu.RUnlock()
	for _, f := range registry {
		for _, e := range f.Extensions {
			if e == ext {
				return f, nil
			}
		}
	}
	return Format{}, fmt.Errorf("no chart format registered for extension %q", ext)
}

func ForPath(path string) (Format, error) {
	return ByExtension(filepath.Ext(path))
}

// Candidates expands a logical chart name into the paths a loader should try,
// in order: the name itself, then every location/extension combination.
func Candidates(name string) []string {
	out := []string{name}
	if filepath.Ext(name) != "" {
		return out
	}
	for _, f := range All() {
		for _, loc := range f.Locations {
			for _, ext := range f.Extensions {
				out = append(out, filepath.Join(loc, name+"."+ext))
			}
		}
	}
	return out
}

package beatmap

import (
	"path/filepath"
	"strings"
)

type namedFile interface {
	Name() string
}

// Fix normalizes the chart so it can be serialized. It runs before every
// write and is safe to call repeatedly. log may be nil.
func (b *Beatmap) Fix(log Logger) {
	warnf := func(format string, args ...any) {
		if log != nil {
			log.Warnf(format, args...)
		}
	}

	if b.NumBands < 1 {
		b.NumBands = 1
	}
	if b.Meta == nil {
		b.Meta = NewMetadata()
	}
	if b.Music == "" {
		if f, ok := b.MusicFile.(namedFile); ok && f.Name() != "" {
			b.Music = filepath.Base(f.Name())
		}
	}

	for i := range b.notes {
		n := &b.notes[i]
		if n.IsRef() && n.Ref() >= i {
			warnf("note %d: reference %d does not point backward, dropped", i, n.Ref())
			n.ClearRef()
		}
		if !n.IsRef() {
			n.RefOfs = 0
			n.RefVarOfs = nil
		}
		if n.HoldTime < 0 {
			warnf("note %d: negative hold time %d reset to 0", i, n.HoldTime)
			n.HoldTime = 0
		}
		if len(n.VarBands) == 0 {
			n.VarBands = nil
		}
		if len(n.RefVarOfs) == 0 {
			n.RefVarOfs = nil
		}
	}

	b.fixMeta(warnf)

	if b.Name != "" {
		if v, ok := b.Meta.Get(MetaName); ok && v != b.Name {
			warnf("metadata name %q replaced by chart name %q", v, b.Name)
		}
		b.Meta.Set(MetaName, b.Name)
	}
}

func (b *Beatmap) fixMeta(warnf func(string, ...any)) {
	fixed := NewMetadata()
	for _, k := range b.Meta.Keys() {
		v, _ := b.Meta.Get(k)
		key := strings.Join(strings.Fields(k), "_")
		if key == "" {
			warnf("metadata entry with empty key dropped")
			continue
		}
		if key != k {
			warnf("metadata key %q renamed to %q", k, key)
		}
		fixed.Set(key, strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(v))
	}
	b.Meta = fixed
}

// ApplyMeta promotes well-known metadata into structured fields after a
// chart has been read. Only "name" is recognized; it fills Name when Name is
// empty and stays in Meta. Every other key is left alone.
func (b *Beatmap) ApplyMeta() {
	if b.Meta == nil {
		b.Meta = NewMetadata()
		return
	}
	if b.Name == "" {
		if v, ok := b.Meta.Get(MetaName); ok {
			b.Name = v
		}
	}
}

// NameFromPath derives a chart name from a file path: the base name
// without its extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

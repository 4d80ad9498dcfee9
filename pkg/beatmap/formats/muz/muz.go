// Package muz implements the line-oriented μz beatmap format.
//
// A file is a sequence of statements, one per line. The first token is the
// statement name and the rest of the line is its argument text:
//
//	# generated by muzchart-0.1.0
//	version 1
//	essential 3 4 song.ogg
//	rate 800
//	meta artist Someone
//	note 0 0
//	hint 1 500 250
//	ref 0 1000
//
// var, ref and refvar decorate the note appended most recently.
package muz

import (
	"fmt"
	"io"

	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/beatmap/formats"
	"github.com/himanishpuri/muzchart/pkg/logger"
)

const (
	FormatName = "μz beatmap"
	Extension  = "beatmap"
	Location   = "beatmaps"

	// Version is the format version written and expected by this package.
	Version = "1"
)

// Generator is written in the header comment of every encoded chart.
var Generator = "muzchart-0.1.0"

// Options controls decoding.
type Options struct {
	// Bare reads header and metadata statements only; essential, note and
	// hint are skipped and the end-of-stream checks are not applied.
	Bare bool

	Logger beatmap.Logger
}

// ParseError reports the line and statement a decode failed on.
type ParseError struct {
	Line      int
	Statement string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("muz: %v", e.Err)
	}
	return fmt.Sprintf("muz: line %d (%s): %v", e.Line, e.Statement, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func defaultLogger() beatmap.Logger {
	return logger.GetLogger().Named("muz")
}

func init() {
	formats.Register(formats.Format{
		Name:       FormatName,
		Extensions: []string{Extension},
		Locations:  []string{Location},
		Read: func(r io.Reader, filename string, bare bool, log beatmap.Logger) (*beatmap.Beatmap, error) {
			return Read(r, filename, Options{Bare: bare, Logger: log})
		},
		Write: Write,
	})
}

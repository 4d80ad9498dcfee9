package beatmap

import "errors"

var (
	// ErrStructure marks a chart stream that is not structurally well formed.
	ErrStructure = errors.New("malformed beatmap")

	// ErrReference marks a note decoration with no note to attach to.
	ErrReference = errors.New("no note to reference")

	// ErrNoMusic is returned when none of the music candidates could be opened.
	ErrNoMusic = errors.New("no music source could be opened")
)

// Logger is the logging surface used by the chart packages.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

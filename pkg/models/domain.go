package models

import "time"

// ChartSummary describes a stored chart without its notes.
type ChartSummary struct {
	ID         string    // Database ID (UUID)
	Name       string    // Unique chart name
	Music      string    // Logical music filename
	NumBands   int       // Number of bands (lanes)
	NoteCount  int       // Number of notes
	NoteRate   float64   // Playback rate hint
	DurationMs int       // End of the last note
	AudioMs    int       // Probed music length, 0 when unknown
	CreatedAt  time.Time // Time the chart was stored
}

// MetaEntry is one metadata pair in insertion order.
type MetaEntry struct {
	Key   string
	Value string
}

// ChartDetail is a summary plus its metadata.
type ChartDetail struct {
	ChartSummary
	Meta []MetaEntry
}

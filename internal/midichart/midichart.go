// Package midichart converts Standard MIDI Files into charts.
package midichart

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/himanishpuri/muzchart/pkg/beatmap/builder"
)

// DefaultMinHoldMs is the shortest MIDI note that becomes a hold.
const DefaultMinHoldMs = 250

type Options struct {
	MinHoldMs int
	// Channel restricts conversion to one MIDI channel; negative means all.
	Channel int
}

func DefaultOptions() Options {
	return Options{MinHoldMs: DefaultMinHoldMs, Channel: -1}
}

type span struct {
	channel    uint8
	key        uint8
	startMicro int64
	endMicro   int64
}

// ReadFile parses a MIDI file. The parser may panic on corrupt input, so
// panics are returned as errors.
func ReadFile(path string) (s *smf.SMF, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("parsing midi file %s: %v", path, r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	s, err = smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing midi file %s: %w", path, err)
	}
	return s, nil
}

// Convert appends one note per MIDI note to b. The band is key modulo the
// chart's band count and times follow the file's tempo map. It returns the
// number of notes appended.
func Convert(s *smf.SMF, b *builder.Builder, opts Options) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("nil midi file")
	}
	if opts.MinHoldMs <= 0 {
		opts.MinHoldMs = DefaultMinHoldMs
	}

	spans, bpm := collect(s, opts.Channel)
	if bpm > 0 {
		b.SetBPM(bpm)
		b.Meta().Set("bpm", strconv.FormatFloat(bpm, 'f', -1, 64))
	}

	numBands := b.Beatmap().NumBands
	for _, sp := range spans {
		hit := float64(sp.startMicro) / 1000
		hold := float64(sp.endMicro-sp.startMicro) / 1000
		b.Seek(hit).Bands(int(sp.key) % numBands)
		if hold >= float64(opts.MinHoldMs) {
			b.RawHold(hold)
		} else {
			b.Beat()
		}
	}
	return len(spans), b.Err()
}

// collect pairs note starts with their ends across all tracks and returns
// them ordered by start time, key and channel, plus the first tempo in the file.
func collect(s *smf.SMF, channel int) ([]span, float64) {
	var spans []span
	var bpm float64
	for _, track := range s.Tracks {
		pressed := make(map[uint16]int64)
		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			var ch, key, vel uint8
			var tempo float64
			switch {
			case ev.Message.GetMetaTempo(&tempo):
				if bpm == 0 {
					bpm = tempo
				}
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				if channel >= 0 && int(ch) != channel {
					continue
				}
				id := uint16(ch)<<8 | uint16(key)
				now := s.TimeAt(absTicks)
				if vel == 0 {
					if start, ok := pressed[id]; ok {
						spans = append(spans, span{channel: ch, key: key, startMicro: start, endMicro: now})
						delete(pressed, id)
					}
					continue
				}
				if start, ok := pressed[id]; ok {
					// retrigger ends the sounding note
					spans = append(spans, span{channel: ch, key: key, startMicro: start, endMicro: now})
				}
				pressed[id] = now
			case ev.Message.GetNoteOff(&ch, &key, &vel):
				if channel >= 0 && int(ch) != channel {
					continue
				}
				id := uint16(ch)<<8 | uint16(key)
				if start, ok := pressed[id]; ok {
					spans = append(spans, span{channel: ch, key: key, startMicro: start, endMicro: s.TimeAt(absTicks)})
					delete(pressed, id)
				}
			}
		}
		// unterminated notes become taps
		for id, start := range pressed {
			spans = append(spans, span{channel: uint8(id >> 8), key: uint8(id), startMicro: start, endMicro: start})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].startMicro != spans[j].startMicro {
			return spans[i].startMicro < spans[j].startMicro
		}
		if spans[i].key != spans[j].key {
			return spans[i].key < spans[j].key
		}
		if spans[i].channel != spans[j].channel {
			return spans[i].channel < spans[j].channel
		}
		return spans[i].endMicro < spans[j].endMicro
	})
	return spans, bpm
}

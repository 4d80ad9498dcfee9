package muz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/himanishpuri/muzchart/pkg/beatmap"
)

type parser struct {
	bare bool
	log  beatmap.Logger
	bm   *beatmap.Beatmap

	initialized     bool
	essentialParsed bool
	maxNotes        int
	// lastAppended indexes the note that var/ref/refvar decorate; -1 before
	// the first note or hint.
	lastAppended int
}

// Read decodes a chart from r. filename is used to name the chart when no
// "name" metadata is present.
//
// Structural problems (a statement before version, a missing or empty
// essential declaration, malformed numbers) fail with an error wrapping
// beatmap.ErrStructure. A var, ref or refvar with no preceding note fails
// with beatmap.ErrReference. Everything else is logged and skipped.
func Read(r io.Reader, filename string, opts Options) (*beatmap.Beatmap, error) {
	p := &parser{
		bare:         opts.Bare,
		log:          opts.Logger,
		bm:           beatmap.New("", 1),
		lastAppended: -1,
	}
	if p.log == nil {
		p.log = defaultLogger()
	}

	br := bufio.NewReader(r)
	var buf []byte
	line := 1
	prevCR := false

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		err := p.statement(line, buf)
		buf = buf[:0]
		return err
	}

	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("muz: reading %s: %w", filename, err)
		}

		switch c {
		case '\r', '\n':
			if err := flush(); err != nil {
				return nil, err
			}
			if c == '\r' || !prevCR {
				line++
			}
			prevCR = c == '\r'
		default:
			buf = append(buf, c)
			prevCR = false
		}
	}
	// A final statement without a line terminator still counts.
	if err := flush(); err != nil {
		return nil, err
	}

	if !p.bare {
		if p.bm.Len() < p.maxNotes {
			p.log.Warnf("premature EOF in %s: expected %d notes, got %d", filename, p.maxNotes, p.bm.Len())
		}
		if !p.essentialParsed || p.maxNotes <= 0 {
			return nil, &ParseError{Err: fmt.Errorf("%w: empty beatmap", beatmap.ErrStructure)}
		}
	}

	p.bm.ApplyMeta()
	if p.bm.Name == "" {
		p.bm.Name = beatmap.NameFromPath(filename)
	}
	return p.bm, nil
}

func (p *parser) statement(line int, raw []byte) error {
	if !utf8.Valid(raw) {
		return &ParseError{Line: line, Err: fmt.Errorf("%w: invalid UTF-8", beatmap.ErrStructure)}
	}
	text := string(raw)
	if text[0] == '#' {
		return nil
	}

	stmt, args, _ := strings.Cut(text, " ")
	if err := p.apply(stmt, args); err != nil {
		return &ParseError{Line: line, Statement: stmt, Err: err}
	}
	return nil
}

func (p *parser) apply(stmt, args string) error {
	if stmt == "version" {
		if p.initialized {
			p.log.Warnf("duplicate 'version' statement ignored")
			return nil
		}
		p.initialized = true
		if args != Version {
			p.log.Warnf("unsupported version %q", args)
		}
		return nil
	}
	if !p.initialized {
		return fmt.Errorf("%w: statement %q encountered before 'version'", beatmap.ErrStructure, stmt)
	}

	switch stmt {
	case "meta":
		key, val, _ := strings.Cut(args, " ")
		p.bm.Meta.Set(key, val)

	case "essential":
		if p.essentialParsed {
			p.log.Warnf("duplicate 'essential' statement ignored")
			return nil
		}
		if !p.bare {
			parts := strings.SplitN(args, " ", 3)
			if len(parts) < 3 {
				return malformed("essential needs <notes> <bands> <music>, got %q", args)
			}
			maxNotes, err := parseInt(parts[0])
			if err != nil {
				return err
			}
			numBands, err := parseInt(parts[1])
			if err != nil {
				return err
			}
			p.maxNotes = maxNotes
			p.bm.NumBands = numBands
			p.bm.Music = parts[2]
		}
		p.essentialParsed = true

	case "rate":
		rate, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
		if err != nil {
			return malformed("rate %q: %v", args, err)
		}
		p.bm.NoteRate = rate

	case "note", "hint":
		if p.bare || !p.essentialParsed {
			return nil
		}
		vals, err := parseInts(args)
		if err != nil {
			return err
		}
		if len(vals) < 2 {
			return malformed("%s needs <band> <time> [hold], got %q", stmt, args)
		}
		n := beatmap.NewNote(vals[0], vals[1], 0)
		if len(vals) > 2 {
			n.HoldTime = vals[2]
		}
		if n.HoldTime < 0 {
			p.log.Warnf("%s at %d: negative hold %d read as a tap", stmt, n.HitTime, n.HoldTime)
			n.HoldTime = 0
		}
		n.IsHint = stmt == "hint"
		p.lastAppended = p.bm.Append(n)

	case "var":
		n, err := p.lastNote(stmt)
		if err != nil {
			return err
		}
		vals, err := parseNonEmptyInts(stmt, args)
		if err != nil {
			return err
		}
		n.VarBands = vals

	case "ref":
		n, err := p.lastNote(stmt)
		if err != nil {
			return err
		}
		vals, err := parseInts(args)
		if err != nil {
			return err
		}
		if len(vals) < 2 {
			return malformed("ref needs <index> <offset>, got %q", args)
		}
		switch {
		case vals[0] == beatmap.NoRef:
			n.ClearRef()
		case vals[0] < 0:
			p.log.Warnf("ref %d: negative index ignored", vals[0])
			n.ClearRef()
		default:
			n.SetRef(vals[0])
			n.RefOfs = vals[1]
		}

	case "refvar":
		n, err := p.lastNote(stmt)
		if err != nil {
			return err
		}
		vals, err := parseNonEmptyInts(stmt, args)
		if err != nil {
			return err
		}
		n.RefVarOfs = vals

	default:
		p.log.Warnf("unknown statement %q ignored", stmt)
	}
	return nil
}

func (p *parser) lastNote(stmt string) (*beatmap.Note, error) {
	n, ok := p.bm.Note(p.lastAppended)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no preceding note", beatmap.ErrReference, stmt)
	}
	return n, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{beatmap.ErrStructure}, args...)...)
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, malformed("bad integer %q", s)
	}
	return v, nil
}

func parseInts(args string) ([]int, error) {
	fields := strings.Fields(args)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := parseInt(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseNonEmptyInts(stmt, args string) ([]int, error) {
	vals, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, malformed("%s needs at least one value", stmt)
	}
	return vals, nil
}

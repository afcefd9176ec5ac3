package token

import (
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

// PosDoc maps byte offsets in a document to line/column positions.
type PosDoc struct {
	d []byte
	n []int // offsets of '\n', ascending
}

func NewPosDoc(d []byte) *PosDoc {
	p := &PosDoc{d: d}
	for i, b := range d {
		if b == '\n' {
			p.n = append(p.n, i)
		}
	}
	return p
}

func (p *PosDoc) Len() int {
	return len(p.d)
}

// NumLines returns the number of lines in the document. An empty
// document has one (empty) line.
func (p *PosDoc) NumLines() int {
	return len(p.n) + 1
}

// LineCol returns the zero-based line and byte column of off.
func (p *PosDoc) LineCol(off int) (int, int) {
	N := len(p.n)
	di := sort.Search(N, func(i int) bool {
		return p.n[i] >= off
	})
	if di == 0 {
		return 0, off
	}
	return di, off - p.n[di-1] - 1
}

// LineSpan returns the byte offsets [start, end) of the content of
// line, excluding the trailing newline.
func (p *PosDoc) LineSpan(line int) (int, int) {
	start := 0
	if line > 0 {
		if line > len(p.n) {
			return len(p.d), len(p.d)
		}
		start = p.n[line-1] + 1
	}
	end := len(p.d)
	if line < len(p.n) {
		end = p.n[line]
	}
	return start, end
}

// Position returns the line and UTF-16 character of off.
func (p *PosDoc) Position(off int) Position {
	if off < 0 {
		off = 0
	}
	if off > len(p.d) {
		off = len(p.d)
	}
	line, _ := p.LineCol(off)
	start, _ := p.LineSpan(line)
	ch := 0
	for i := start; i < off; {
		r, sz := utf8.DecodeRune(p.d[i:])
		if r >= 0x10000 {
			ch += 2
		} else {
			ch++
		}
		i += sz
	}
	return Position{Line: line, Character: ch}
}

// Offset converts a line plus UTF-16 character position to a byte
// offset, clamping past-end positions to the line or document end.
func (p *PosDoc) Offset(pos Position) int {
	if pos.Line >= p.NumLines() {
		return len(p.d)
	}
	start, end := p.LineSpan(pos.Line)
	ch := 0
	for i := start; i < end; {
		if ch >= pos.Character {
			return i
		}
		r, sz := utf8.DecodeRune(p.d[i:])
		if r >= 0x10000 {
			ch += 2
		} else {
			ch++
		}
		i += sz
	}
	return end
}

// Rng builds a Range from the byte interval [start, end).
func (p *PosDoc) Rng(start, end int) Range {
	return Range{Start: p.Position(start), End: p.Position(end)}
}

func (p *PosDoc) Pos(i int) *Pos {
	return &Pos{I: i, D: p}
}

// Position is a zero-based line plus UTF-16 character column.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) interval of positions.
type Range struct {
	Start Position
	End   Position
}

// Pos is a byte offset bound to its document, for error reporting.
type Pos struct {
	I int
	D *PosDoc
}

func (p *Pos) LineCol() (int, int) {
	return p.D.LineCol(p.I)
}

func (p *Pos) Line() int {
	l, _ := p.LineCol()
	return l
}

func (p *Pos) Col() int {
	_, c := p.LineCol()
	return c
}

func (p Pos) String() string {
	sample := string(p.D.d[max(0, p.I-5):min(p.I+5, len(p.D.d))])
	sample = strconv.Quote(sample)
	sample = sample[1 : len(sample)-1]
	return fmt.Sprintf("`...%s...` at offset %d (line=%d, col=%d)", sample, p.I, p.Line(), p.Col())
}

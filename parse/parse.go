// Package parse turns YAML infrastructure-template text into an
// offset-addressable syntax tree. The parser covers the subset of
// YAML these templates use (block mappings and sequences, plain and
// quoted scalars, block literals, single-line flow collections, and
// custom intrinsic-function tags) and recovers from structural errors
// instead of aborting: completion and hover depend on partial trees
// being usable.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cfntools/cfnls/debug"
	"github.com/cfntools/cfnls/ir"
	"github.com/cfntools/cfnls/token"
)

// Parse builds a Document from d. It never fails: structural errors
// are recorded on the Document and a best-effort tree is returned.
func Parse(d []byte, opts ...ParseOption) *Document {
	pOpts := &parseOpts{}
	for _, f := range opts {
		f(pOpts)
	}
	p := &parser{
		src:  d,
		pos:  token.NewPosDoc(d),
		tags: make(map[string]bool, len(pOpts.tags)),
	}
	for _, t := range pOpts.tags {
		p.tags[t] = true
	}
	p.scanLines()
	p.skipBlank()
	var root *ir.Node
	if p.i < len(p.lines) {
		ln := p.lines[p.i]
		root = p.parseBlockAt(ln.start + ln.indent)
	}
	p.skipBlank()
	if p.i < len(p.lines) {
		ln := p.lines[p.i]
		p.errorf(ln.start+ln.indent, "unexpected content after document")
	}
	if debug.Parse() {
		debug.Logf("parse: %d bytes, %d lines, %d errors", len(d), len(p.lines), len(p.errs))
		for _, e := range p.errs {
			debug.Logf("parse: error at %d: %s", e.Pos.I, e.Msg)
		}
	}
	return &Document{Source: d, Pos: p.pos, Root: root, Errors: p.errs}
}

type srcLine struct {
	start  int // byte offset of line start
	end    int // byte offset of line end, excluding '\n'
	indent int
	blank  bool // empty, whitespace-only or comment-only
}

type parser struct {
	src   []byte
	pos   *token.PosDoc
	lines []srcLine
	tags  map[string]bool
	errs  []*Error
	i     int // current line index
}

func (p *parser) errorf(off int, format string, args ...any) {
	p.errs = append(p.errs, &Error{Pos: p.pos.Pos(off), Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) scanLines() {
	n := len(p.src)
	start := 0
	for {
		end := start
		for end < n && p.src[end] != '\n' {
			end++
		}
		ln := srcLine{start: start, end: end}
		j := start
		tabAt := -1
		for j < end && (p.src[j] == ' ' || p.src[j] == '\t') {
			if p.src[j] == '\t' && tabAt < 0 {
				tabAt = j
			}
			j++
		}
		ln.indent = j - start
		ln.blank = j == end || p.src[j] == '#'
		if tabAt >= 0 && !ln.blank {
			p.errorf(tabAt, "tab used for indentation")
		}
		p.lines = append(p.lines, ln)
		if end >= n {
			return
		}
		start = end + 1
	}
}

func (p *parser) skipBlank() {
	for p.i < len(p.lines) && p.lines[p.i].blank {
		p.i++
	}
}

func isSeqStart(rest []byte) bool {
	if len(rest) == 0 || rest[0] != '-' {
		return false
	}
	return len(rest) == 1 || rest[1] == ' ' || rest[1] == '\t'
}

// parseBlockAt parses the block whose first content byte is off on the
// current line.
func (p *parser) parseBlockAt(off int) *ir.Node {
	ln := p.lines[p.i]
	col := off - ln.start
	switch {
	case isSeqStart(p.src[off:ln.end]):
		return p.parseSeq(off, col)
	case p.topLevelColon(off, p.contentEnd(off, ln.end)) >= 0:
		return p.parseMap(off, col)
	default:
		return p.parseValueAt(off, col)
	}
}

func (p *parser) parseMap(off, col int) *ir.Node {
	obj := &ir.Node{Type: ir.ObjectType, Start: off, End: off}
	for p.i < len(p.lines) {
		ln := p.lines[p.i]
		keyOff := ln.start + col
		key, colonOff := p.parseKey(keyOff, ln.end)
		if key == nil {
			p.i++
		} else {
			if obj.HasField(key.String) {
				p.errorf(key.Start, "duplicate key %q", key.String)
			}
			var val *ir.Node
			if colonOff < 0 {
				p.errorf(key.End, "could not find expected ':'")
				obj.AddField(key, nil)
				p.i++
			} else {
				val = p.parseMapValue(colonOff+1, ln, col)
				obj.AddField(key, val)
			}
			if key.End > obj.End {
				obj.End = key.End
			}
			if val != nil && val.End > obj.End {
				obj.End = val.End
			}
		}
		p.skipBlank()
		for p.i < len(p.lines) && !p.lines[p.i].blank && p.lines[p.i].indent > col {
			nln := p.lines[p.i]
			p.errorf(nln.start+nln.indent, "bad indentation of a mapping entry")
			p.i++
			p.skipBlank()
		}
		if p.i >= len(p.lines) || p.lines[p.i].indent < col {
			break
		}
	}
	return obj
}

// parseKey scans a mapping key starting at off, returning the key node
// and the offset of its ':' delimiter, or -1 when the line has none (a
// dangling key, which the caller reports). A nil key means the line
// was consumed with an error.
func (p *parser) parseKey(off, lineEnd int) (*ir.Node, int) {
	cend := p.contentEnd(off, lineEnd)
	if off >= cend {
		return nil, -1
	}
	if isSeqStart(p.src[off:cend]) {
		p.errorf(off, "block sequence entry is not allowed here")
		return nil, -1
	}
	colon := p.topLevelColon(off, cend)
	var key *ir.Node
	if c := p.src[off]; c == '"' || c == '\'' {
		text, j, ok := p.scanQuoted(off, cend)
		if !ok {
			p.errorf(off, "unterminated quoted scalar")
		}
		key = &ir.Node{Type: ir.StringType, String: text, Start: off, End: j}
	} else {
		e := colon
		if e < 0 {
			e = cend
		}
		for e > off && p.src[e-1] == ' ' {
			e--
		}
		key = &ir.Node{Type: ir.StringType, String: string(p.src[off:e]), Start: off, End: e}
	}
	return key, colon
}

func (p *parser) parseMapValue(after int, ln srcLine, col int) *ir.Node {
	vstart := after
	for vstart < ln.end && p.src[vstart] == ' ' {
		vstart++
	}
	vend := p.contentEnd(vstart, ln.end)
	if vstart >= vend {
		p.i++
		return p.parseChildBlock(col, true)
	}
	if c := p.src[vstart]; c == '|' || c == '>' {
		return p.parseBlockScalar(vstart, vend, col)
	}
	node, endOff := p.parseInline(vstart, vend, false)
	p.i++
	p.checkTrailing(endOff, vend)
	return p.attachBlockTagArg(node, col)
}

// attachBlockTagArg resolves a known tag that had no inline argument:
// the argument may be a block on the following lines; otherwise the
// arity violation is a parse error and the tag node stays empty.
func (p *parser) attachBlockTagArg(node *ir.Node, col int) *ir.Node {
	if node == nil || node.Type != ir.TagType || len(node.Values) > 0 {
		return node
	}
	arg := p.parseChildBlock(col, false)
	if arg == nil {
		p.errorf(node.Start, "expected an argument for tag %s", node.Tag)
		return node
	}
	node.AppendValue(arg)
	if arg.End > node.End {
		node.End = arg.End
	}
	return node
}

// parseChildBlock parses the block value of an entry at column col,
// found on the following lines: either indented deeper, or, for
// direct mapping values only, a sequence sitting at the same
// indentation as its key. The same-column rule must not apply to
// sequence items or tag arguments, which would otherwise swallow the
// enclosing sequence's remaining items.
func (p *parser) parseChildBlock(col int, allowSeqAtCol bool) *ir.Node {
	p.skipBlank()
	if p.i >= len(p.lines) {
		return nil
	}
	ln := p.lines[p.i]
	if ln.indent > col {
		return p.parseBlockAt(ln.start + ln.indent)
	}
	if allowSeqAtCol && ln.indent == col && isSeqStart(p.src[ln.start+col:ln.end]) {
		return p.parseSeq(ln.start+col, col)
	}
	return nil
}

func (p *parser) parseSeq(off, col int) *ir.Node {
	arr := &ir.Node{Type: ir.ArrayType, Start: off, End: off}
	for p.i < len(p.lines) {
		ln := p.lines[p.i]
		item := p.parseSeqItem(ln.start+col, ln, col)
		if item != nil {
			arr.AppendValue(item)
			if item.End > arr.End {
				arr.End = item.End
			}
		}
		p.skipBlank()
		for p.i < len(p.lines) && !p.lines[p.i].blank && p.lines[p.i].indent > col {
			nln := p.lines[p.i]
			p.errorf(nln.start+nln.indent, "bad indentation of a sequence entry")
			p.i++
			p.skipBlank()
		}
		if p.i >= len(p.lines) {
			break
		}
		nln := p.lines[p.i]
		if nln.indent != col || !isSeqStart(p.src[nln.start+col:nln.end]) {
			break
		}
	}
	return arr
}

func (p *parser) parseSeqItem(dash int, ln srcLine, col int) *ir.Node {
	vstart := dash + 1
	for vstart < ln.end && p.src[vstart] == ' ' {
		vstart++
	}
	vend := p.contentEnd(vstart, ln.end)
	if vstart >= vend {
		p.i++
		item := p.parseChildBlock(col, false)
		if item == nil {
			item = &ir.Node{Type: ir.NullType, Start: dash, End: dash + 1}
		}
		return item
	}
	ccol := vstart - ln.start
	if c := p.src[vstart]; c == '|' || c == '>' {
		return p.parseBlockScalar(vstart, vend, col)
	}
	if isSeqStart(p.src[vstart:ln.end]) {
		return p.parseSeq(vstart, ccol)
	}
	if p.topLevelColon(vstart, vend) >= 0 {
		return p.parseMap(vstart, ccol)
	}
	node, endOff := p.parseInline(vstart, vend, false)
	p.i++
	p.checkTrailing(endOff, vend)
	return p.attachBlockTagArg(node, col)
}

func (p *parser) parseValueAt(off, col int) *ir.Node {
	ln := p.lines[p.i]
	vend := p.contentEnd(off, ln.end)
	if off < vend {
		if c := p.src[off]; c == '|' || c == '>' {
			return p.parseBlockScalar(off, vend, col)
		}
	}
	node, endOff := p.parseInline(off, vend, false)
	p.i++
	p.checkTrailing(endOff, vend)
	return p.attachBlockTagArg(node, col)
}

func (p *parser) checkTrailing(from, end int) {
	for from < end && p.src[from] == ' ' {
		from++
	}
	if from < end {
		p.errorf(from, "unexpected content after value")
	}
}

// contentEnd returns the end of meaningful content in [from, end):
// the start of a trailing comment if any, with trailing spaces
// stripped. Quoted sections are skipped so '#' inside them is kept.
func (p *parser) contentEnd(from, end int) int {
	e := end
	i := from
	for i < e {
		c := p.src[i]
		if c == '"' || c == '\'' {
			_, j, _ := p.scanQuoted(i, e)
			i = j
			continue
		}
		if c == '#' && (i == from || p.src[i-1] == ' ' || p.src[i-1] == '\t') {
			e = i
			break
		}
		i++
	}
	for e > from && (p.src[e-1] == ' ' || p.src[e-1] == '\t') {
		e--
	}
	return e
}

// topLevelColon returns the offset of the first ':' delimiter (a colon
// followed by a space or at end of content) outside quotes and flow
// collections, or -1.
func (p *parser) topLevelColon(from, end int) int {
	depth := 0
	i := from
	for i < end {
		c := p.src[i]
		switch c {
		case '"', '\'':
			_, j, _ := p.scanQuoted(i, end)
			i = j
			continue
		case '{', '[':
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && (i+1 >= end || p.src[i+1] == ' ' || p.src[i+1] == '\t') {
				return i
			}
		}
		i++
	}
	return -1
}

// parseInline parses a value within a single line's [from, end)
// content span: flow collections, quoted scalars, tags and plain
// scalars. It returns the node and the offset just past it.
func (p *parser) parseInline(from, end int, inFlow bool) (*ir.Node, int) {
	i := from
	for i < end && p.src[i] == ' ' {
		i++
	}
	if i >= end {
		n := ir.Null()
		n.Start, n.End = i, i
		return n, i
	}
	switch c := p.src[i]; {
	case c == '{':
		return p.parseFlowMap(i, end)
	case c == '[':
		return p.parseFlowSeq(i, end)
	case c == '"' || c == '\'':
		text, j, ok := p.scanQuoted(i, end)
		if !ok {
			p.errorf(i, "unterminated quoted scalar")
		}
		return &ir.Node{Type: ir.StringType, String: text, Start: i, End: j}, j
	case c == '!':
		return p.parseTag(i, end, inFlow)
	default:
		return p.parsePlain(i, end, inFlow)
	}
}

func (p *parser) parseTag(from, end int, inFlow bool) (*ir.Node, int) {
	j := from
	for j < end {
		c := p.src[j]
		if c == ' ' {
			break
		}
		if inFlow && (c == ',' || c == '}' || c == ']') {
			break
		}
		j++
	}
	tag := string(p.src[from:j])
	if !p.tags[tag] {
		// unlisted tag: left as a literal scalar
		return p.parsePlain(from, end, inFlow)
	}
	node := &ir.Node{Type: ir.TagType, Tag: tag, Start: from, End: j}
	k := j
	for k < end && p.src[k] == ' ' {
		k++
	}
	if k < end && !(inFlow && (p.src[k] == ',' || p.src[k] == '}' || p.src[k] == ']')) {
		arg, m := p.parseInline(k, end, inFlow)
		if arg != nil {
			node.AppendValue(arg)
			if arg.End > node.End {
				node.End = arg.End
			}
		}
		return node, m
	}
	if inFlow {
		// no block continuation possible inside a flow collection
		p.errorf(node.Start, "expected an argument for tag %s", node.Tag)
	}
	return node, k
}

func (p *parser) parsePlain(from, end int, inFlow bool) (*ir.Node, int) {
	j := from
	for j < end {
		c := p.src[j]
		if inFlow && (c == ',' || c == '}' || c == ']') {
			break
		}
		j++
	}
	e := j
	for e > from && p.src[e-1] == ' ' {
		e--
	}
	return plainNode(string(p.src[from:e]), from, e), j
}

// plainNode types a plain scalar the way YAML core schema does.
func plainNode(text string, start, end int) *ir.Node {
	var y *ir.Node
	switch text {
	case "null", "~", "":
		y = ir.Null()
	case "true":
		y = ir.FromBool(true)
	case "false":
		y = ir.FromBool(false)
	default:
		if i64, err := strconv.ParseInt(text, 10, 64); err == nil {
			y = ir.FromInt(i64)
		} else if f, err := strconv.ParseFloat(text, 64); err == nil {
			y = ir.FromFloat(f)
		} else {
			y = ir.FromString(text)
		}
	}
	y.String = text
	y.Start, y.End = start, end
	return y
}

func (p *parser) parseFlowMap(from, end int) (*ir.Node, int) {
	obj := &ir.Node{Type: ir.ObjectType, Start: from, End: from + 1}
	j := from + 1
	for {
		for j < end && p.src[j] == ' ' {
			j++
		}
		if j >= end {
			p.errorf(from, "unterminated flow mapping")
			obj.End = end
			return obj, end
		}
		if p.src[j] == '}' {
			obj.End = j + 1
			return obj, j + 1
		}
		var key *ir.Node
		if c := p.src[j]; c == '"' || c == '\'' {
			text, k, ok := p.scanQuoted(j, end)
			if !ok {
				p.errorf(j, "unterminated quoted scalar")
			}
			key = &ir.Node{Type: ir.StringType, String: text, Start: j, End: k}
			j = k
		} else {
			k := j
			for k < end && p.src[k] != ':' && p.src[k] != ',' && p.src[k] != '}' {
				k++
			}
			e := k
			for e > j && p.src[e-1] == ' ' {
				e--
			}
			key = &ir.Node{Type: ir.StringType, String: string(p.src[j:e]), Start: j, End: e}
			j = k
		}
		for j < end && p.src[j] == ' ' {
			j++
		}
		var val *ir.Node
		if j < end && p.src[j] == ':' {
			j++
			val, j = p.parseInline(j, end, true)
		}
		if obj.HasField(key.String) {
			p.errorf(key.Start, "duplicate key %q", key.String)
		}
		obj.AddField(key, val)
		if val != nil && val.End > obj.End {
			obj.End = val.End
		}
		for j < end && p.src[j] == ' ' {
			j++
		}
		if j < end && p.src[j] == ',' {
			j++
			continue
		}
		if j < end && p.src[j] != '}' {
			p.errorf(j, "expected ',' or '}' in flow mapping")
			j++
		}
	}
}

func (p *parser) parseFlowSeq(from, end int) (*ir.Node, int) {
	arr := &ir.Node{Type: ir.ArrayType, Start: from, End: from + 1}
	j := from + 1
	for {
		for j < end && p.src[j] == ' ' {
			j++
		}
		if j >= end {
			p.errorf(from, "unterminated flow sequence")
			arr.End = end
			return arr, end
		}
		if p.src[j] == ']' {
			arr.End = j + 1
			return arr, j + 1
		}
		elt, k := p.parseInline(j, end, true)
		if elt != nil {
			arr.AppendValue(elt)
			if elt.End > arr.End {
				arr.End = elt.End
			}
		}
		if k == j {
			k++
		}
		j = k
		for j < end && p.src[j] == ' ' {
			j++
		}
		if j < end && p.src[j] == ',' {
			j++
			continue
		}
		if j < end && p.src[j] != ']' {
			p.errorf(j, "expected ',' or ']' in flow sequence")
			j++
		}
	}
}

// scanQuoted scans a quoted scalar starting at the quote character,
// returning the unescaped text and the offset just past the closing
// quote. ok is false when the line ends before the quote closes.
func (p *parser) scanQuoted(from, end int) (string, int, bool) {
	q := p.src[from]
	var sb strings.Builder
	j := from + 1
	for j < end {
		c := p.src[j]
		if q == '"' && c == '\\' && j+1 < end {
			switch esc := p.src[j+1]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"', '\\':
				sb.WriteByte(esc)
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			j += 2
			continue
		}
		if c == q {
			if q == '\'' && j+1 < end && p.src[j+1] == '\'' {
				sb.WriteByte('\'')
				j += 2
				continue
			}
			return sb.String(), j + 1, true
		}
		sb.WriteByte(c)
		j++
	}
	return sb.String(), end, false
}

// parseBlockScalar parses a '|' or '>' scalar: the header is at
// [from, headerEnd) on the current line, the content is every
// following line indented past col.
func (p *parser) parseBlockScalar(from, headerEnd, col int) *ir.Node {
	folded := p.src[from] == '>'
	strip := false
	for k := from + 1; k < headerEnd; k++ {
		switch p.src[k] {
		case '-':
			strip = true
		case '+', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			// keep and explicit-indent indicators are accepted and
			// treated as the default
		default:
			p.errorf(k, "unexpected character after block scalar indicator")
			k = headerEnd
		}
	}
	p.i++
	lastEnd := headerEnd
	baseIndent := -1
	var raw []string
	for p.i < len(p.lines) {
		ln := p.lines[p.i]
		empty := ln.start+ln.indent >= ln.end
		if !empty && ln.indent <= col {
			break
		}
		if empty {
			raw = append(raw, "")
		} else {
			if baseIndent < 0 {
				baseIndent = ln.indent
			}
			ind := min(ln.indent, baseIndent)
			raw = append(raw, string(p.src[ln.start+ind:ln.end]))
			lastEnd = ln.end
		}
		p.i++
	}
	var text string
	if folded {
		var sb strings.Builder
		for i, l := range raw {
			if l == "" {
				sb.WriteByte('\n')
				continue
			}
			if i > 0 && raw[i-1] != "" {
				sb.WriteByte(' ')
			}
			sb.WriteString(l)
		}
		text = sb.String()
	} else {
		text = strings.Join(raw, "\n")
	}
	text = strings.TrimRight(text, "\n")
	if !strip && text != "" {
		text += "\n"
	}
	return &ir.Node{Type: ir.StringType, String: text, Start: from, End: lastEnd}
}

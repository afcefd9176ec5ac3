package ir

import (
	"strconv"
	"strings"
)

// Segment is one step of a node's path from the document root: an
// object key or an array index. Tag nodes are transparent; the tag
// argument keeps the path of the tagged position.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Field
}

// Segments returns the ordered path from the document root to y. A key
// node and its value share the same path.
func (y *Node) Segments() []Segment {
	var rev []Segment
	for n := y; n.Parent != nil; n = n.Parent {
		switch n.Parent.Type {
		case ObjectType:
			rev = append(rev, Segment{Field: n.ParentField})
		case ArrayType:
			rev = append(rev, Segment{Index: n.ParentIndex, IsIndex: true})
		case TagType:
			// transparent
		}
	}
	segs := make([]Segment, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		segs = append(segs, rev[i])
	}
	return segs
}

// Path renders the node's path in dotted form, for display and debug
// output.
func (y *Node) Path() string {
	if y.Parent == nil {
		return "$"
	}
	segs := y.Segments()
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range segs {
		if s.IsIndex {
			b.WriteString(s.String())
			continue
		}
		b.WriteByte('.')
		f := s.Field
		if f != "" && strings.IndexAny(f, "'.*$[]") == -1 {
			b.WriteString(f)
			continue
		}
		b.WriteString("'" + strings.ReplaceAll(f, "'", "\\'") + "'")
	}
	return b.String()
}

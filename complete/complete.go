// Package complete produces context-sensitive suggestions for a cursor
// position in template text. The input is usually mid-edit and locally
// invalid; a small splice repairs it enough to parse before the schema
// is consulted.
package complete

import (
	"strings"

	"github.com/cfntools/cfnls/debug"
	"github.com/cfntools/cfnls/ir"
	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/schema"
	"github.com/cfntools/cfnls/token"
)

type Kind int

const (
	KindProperty Kind = iota + 1
	KindValue
)

// Item is one suggestion. Documentation stays empty until Resolve
// fills it in; transports surface suggestions in bulk and only the
// selected one needs its docs.
type Item struct {
	Label         string
	InsertText    string
	Detail        string
	Documentation string
	Kind          Kind

	doc string
}

type List struct {
	Items        []Item
	IsIncomplete bool
}

// Resolve fills in the deferred fields of a previously returned item.
// Resolving twice is a no-op.
func Resolve(item Item) Item {
	if item.Documentation == "" {
		item.Documentation = item.doc
	}
	return item
}

// Complete returns the suggestions for the byte offset in src under s.
// Offsets outside [0, len(src)] are a contract violation and panic.
func Complete(src []byte, s *schema.Schema, offset int, opts ...parse.ParseOption) List {
	if offset < 0 || offset > len(src) {
		panic("complete: offset out of range")
	}
	if s == nil {
		return List{}
	}
	repaired, q := repair(src, offset)
	if debug.Complete() {
		debug.Logf("complete: offset %d, query %d, spliced=%v", offset, q, len(repaired) != len(src))
	}
	doc := parse.Parse(repaired, opts...)
	if doc.Root == nil {
		return List{}
	}
	node := doc.NodeAt(q)
	if node == nil {
		// the offset sits just past a key's delimiter, outside every
		// node interval; complete a value for that key
		if key := lastKeyOnLine(doc.Root, doc.Pos, offset); key != nil {
			return valueItems(schema.At(s, key), "")
		}
		return List{}
	}

	switch {
	case node.IsKey():
		partial := node.String
		if partial == placeholderKey {
			partial = ""
		}
		return keyItems(s, node.Parent, node, partial)
	case node.Type == ir.ObjectType:
		if key := fieldBefore(node, doc.Pos, q); key != nil {
			return valueItems(schema.At(s, key), "")
		}
		return keyItems(s, node, nil, "")
	case node.Type.IsLeaf():
		return valueItems(schema.At(s, node), node.String)
	default:
		return List{}
	}
}

// keyItems suggests the keys an object may still gain: the declared
// properties of its schema minus the keys already present, in
// schema-declaration order with prefix matches surfaced first.
func keyItems(root *schema.Schema, obj, self *ir.Node, partial string) List {
	s := schema.At(root, obj)
	if s == nil {
		return List{}
	}
	existing := make(map[string]bool, len(obj.Fields))
	for _, f := range obj.Fields {
		if f == self || f.String == placeholderKey {
			continue
		}
		existing[f.String] = true
	}
	var items []Item
	for _, p := range s.Properties {
		if existing[p.Name] {
			continue
		}
		it := Item{
			Label:      p.Name,
			InsertText: p.Name,
			Kind:       KindProperty,
		}
		if p.Schema != nil {
			it.Detail = p.Schema.Type
			it.doc = p.Schema.Description
		}
		items = append(items, it)
	}
	return List{Items: preferPrefix(items, partial)}
}

// valueItems suggests scalar values: the schema's enumeration, plus the
// boolean literals for boolean-typed positions.
func valueItems(s *schema.Schema, partial string) List {
	if s == nil {
		return List{}
	}
	var items []Item
	for _, e := range s.Enum {
		items = append(items, Item{
			Label:      e,
			InsertText: e,
			Kind:       KindValue,
			doc:        s.Description,
		})
	}
	if s.Type == "boolean" && len(s.Enum) == 0 {
		for _, b := range []string{"true", "false"} {
			items = append(items, Item{
				Label:      b,
				InsertText: b,
				Kind:       KindValue,
				doc:        s.Description,
			})
		}
	}
	return List{Items: preferPrefix(items, partial)}
}

// preferPrefix stably moves items whose label starts with partial ahead
// of the rest; declaration order is preserved within each group.
func preferPrefix(items []Item, partial string) []Item {
	if partial == "" || len(items) == 0 {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(it.Label, partial) {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if !strings.HasPrefix(it.Label, partial) {
			out = append(out, it)
		}
	}
	return out
}

// lastKeyOnLine finds the key node on the offset's line ending closest
// to (and before) the offset, anywhere in the tree.
func lastKeyOnLine(root *ir.Node, pos *token.PosDoc, off int) *ir.Node {
	line, _ := pos.LineCol(off)
	var best *ir.Node
	root.Visit(func(n *ir.Node, isPost bool) (bool, error) {
		if isPost || !n.IsKey() || n.End > off {
			return true, nil
		}
		if l, _ := pos.LineCol(n.Start); l != line {
			return true, nil
		}
		if best == nil || n.End > best.End {
			best = n
		}
		return true, nil
	})
	return best
}

// fieldBefore finds the key whose entry the offset sits in when the
// offset resolved only to the enclosing object: the last key on the
// same line ending at or before the offset. That is the value position
// right after a "key:" with nothing typed yet.
func fieldBefore(obj *ir.Node, pos *token.PosDoc, off int) *ir.Node {
	line, _ := pos.LineCol(off)
	var best *ir.Node
	for _, f := range obj.Fields {
		if f.End > off {
			continue
		}
		l, _ := pos.LineCol(f.Start)
		if l != line {
			continue
		}
		if best == nil || f.End > best.End {
			best = f
		}
	}
	return best
}

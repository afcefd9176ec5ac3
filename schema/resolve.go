package schema

import (
	"slices"

	"github.com/cfntools/cfnls/ir"
)

// At returns the schema governing node, walking the schema tree in
// lock-step with the node's path from the document root. It returns
// nil when the schema declares nothing for that path.
func At(s *Schema, node *ir.Node) *Schema {
	if s == nil || node == nil {
		return nil
	}
	doc := node.Root()
	for _, seg := range node.Segments() {
		s = Resolve(s, doc)
		if s == nil {
			return nil
		}
		if seg.IsIndex {
			s = s.Items
		} else {
			s = s.Sub(seg.Field)
		}
		doc = stepDoc(doc, seg)
	}
	return Resolve(s, doc)
}

// Resolve picks through oneOf alternatives using the document node at
// the same level: the first alternative whose enum-constrained
// properties match the document's present scalar values wins. With no
// discriminating evidence the first alternative is used, matching the
// engine's lenient first-success policy.
func Resolve(s *Schema, doc *ir.Node) *Schema {
	if s == nil || len(s.OneOf) == 0 {
		return s
	}
	if doc != nil {
		doc = unwrapTag(doc)
	}
	if doc != nil {
		for _, alt := range s.OneOf {
			if discriminates(alt, doc) {
				return Resolve(alt, doc)
			}
		}
	}
	return Resolve(s.OneOf[0], doc)
}

// discriminates reports whether doc carries scalar evidence selecting
// alt: at least one enum-constrained property present with a matching
// value, and none with a conflicting one.
func discriminates(alt *Schema, doc *ir.Node) bool {
	if doc == nil || doc.Type != ir.ObjectType {
		return false
	}
	matched := false
	for _, p := range alt.Properties {
		if p.Schema == nil || len(p.Schema.Enum) == 0 {
			continue
		}
		v := doc.Get(p.Name)
		if v != nil {
			v = unwrapTag(v)
		}
		if v == nil || !v.Type.IsLeaf() {
			continue
		}
		if !slices.Contains(p.Schema.Enum, v.String) {
			return false
		}
		matched = true
	}
	return matched
}

func stepDoc(doc *ir.Node, seg ir.Segment) *ir.Node {
	if doc == nil {
		return nil
	}
	doc = unwrapTag(doc)
	if doc == nil {
		return nil
	}
	if seg.IsIndex {
		if doc.Type == ir.ArrayType && seg.Index < len(doc.Values) {
			return doc.Values[seg.Index]
		}
		return nil
	}
	if doc.Type == ir.ObjectType {
		return doc.Get(seg.Field)
	}
	return nil
}

// unwrapTag descends through intrinsic-function nodes to the tagged
// argument; paths treat tags as transparent.
func unwrapTag(doc *ir.Node) *ir.Node {
	for doc != nil && doc.Type == ir.TagType {
		if len(doc.Values) == 0 {
			return nil
		}
		doc = doc.Values[0]
	}
	return doc
}

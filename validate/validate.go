// Package validate walks a parsed template against its resolved
// schema, producing deduplicated error diagnostics. Validation is a
// pure function of (document, schema): re-running on unchanged input
// yields identical output.
package validate

import (
	"fmt"
	"strings"

	"github.com/cfntools/cfnls/ir"
	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/schema"
)

// Validate returns the document's diagnostics under s. Parse errors
// recorded on the document surface first; schema checks follow in
// document order. A nil schema disables schema checks; validation
// degrades to parse errors only, never fails.
func Validate(doc *parse.Document, s *schema.Schema) []Diagnostic {
	v := &validator{doc: doc}
	for _, e := range doc.Errors {
		v.add(Diagnostic{
			Range:    doc.Pos.Rng(e.Pos.I, e.Pos.I+1),
			Message:  e.Msg,
			Severity: SeverityError,
			Source:   Source,
		})
	}
	if s != nil && doc.Root != nil {
		v.walk(doc.Root, s)
	}
	return v.diags
}

type validator struct {
	doc   *parse.Document
	diags []Diagnostic
	seen  map[string]bool
}

func (v *validator) add(d Diagnostic) {
	key := fmt.Sprintf("%d:%d-%d:%d %s",
		d.Range.Start.Line, d.Range.Start.Character,
		d.Range.End.Line, d.Range.End.Character, d.Message)
	if v.seen == nil {
		v.seen = make(map[string]bool)
	}
	if v.seen[key] {
		return
	}
	v.seen[key] = true
	v.diags = append(v.diags, d)
}

func (v *validator) nodeErr(node *ir.Node, format string, args ...any) {
	v.add(Diagnostic{
		Range:    v.doc.Pos.Rng(node.Start, node.End),
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
		Source:   Source,
	})
}

func (v *validator) walk(node *ir.Node, s *schema.Schema) {
	if node == nil || s == nil {
		return
	}
	if node.Type == ir.TagType {
		// An intrinsic function's result is unknowable statically;
		// the argument subtree is still structurally parsed but not
		// schema-checked.
		return
	}
	if len(s.OneOf) > 0 {
		v.walkOneOf(node, s)
		return
	}
	if s.Type != "" && !typeMatches(s.Type, node) {
		v.nodeErr(node, "expected %s but found %s", s.Type, typeName(node))
		return
	}
	switch node.Type {
	case ir.ObjectType:
		for _, req := range s.Required {
			if !node.HasField(req) {
				// the diagnostic covers the enclosing object
				v.nodeErr(node, "missing required key %q", req)
			}
		}
		for i := range node.Fields {
			name := node.Fields[i].String
			val := node.Values[i]
			sub := s.Sub(name)
			if sub == nil {
				if s.Closed {
					v.nodeErr(node.Fields[i], "key %q is not permitted here", name)
				}
				continue
			}
			if val == nil {
				// dangling key; already a parse error
				continue
			}
			v.walk(val, sub)
		}
	case ir.ArrayType:
		if s.Items == nil {
			return
		}
		for _, item := range node.Values {
			v.walk(item, s.Items)
		}
	default:
		if len(s.Enum) > 0 && !enumHas(s.Enum, node.String) {
			v.nodeErr(node, "value %q is not one of: %s", node.String, strings.Join(s.Enum, ", "))
		}
		if s.Pattern != "" && node.Type == ir.StringType {
			ok, err := s.MatchPattern(node.String)
			if err == nil && !ok {
				v.nodeErr(node, "value %q does not match pattern %q", node.String, s.Pattern)
			}
		}
	}
}

// walkOneOf checks node against the alternatives. The first
// alternative that produces no diagnostics satisfies the node; more
// than one match is deliberately left unreported. When none matches,
// the diagnostics of the closest alternative (fewest errors) are
// surfaced.
func (v *validator) walkOneOf(node *ir.Node, s *schema.Schema) {
	var best []Diagnostic
	for _, alt := range s.OneOf {
		probe := &validator{doc: v.doc}
		probe.walk(node, alt)
		if len(probe.diags) == 0 {
			return
		}
		if best == nil || len(probe.diags) < len(best) {
			best = probe.diags
		}
	}
	for _, d := range best {
		v.add(d)
	}
}

func typeMatches(want string, node *ir.Node) bool {
	switch want {
	case "object":
		return node.Type == ir.ObjectType
	case "array":
		return node.Type == ir.ArrayType
	case "string":
		// plain scalars that look numeric or boolean still satisfy a
		// string schema; templates rarely quote such values
		return node.Type.IsLeaf() && node.Type != ir.NullType
	case "number":
		return node.Type == ir.NumberType
	case "integer":
		return node.Type == ir.NumberType && node.Int64 != nil
	case "boolean":
		return node.Type == ir.BoolType
	case "null":
		return node.Type == ir.NullType
	default:
		return true
	}
}

func typeName(node *ir.Node) string {
	switch node.Type {
	case ir.ObjectType:
		return "object"
	case ir.ArrayType:
		return "array"
	case ir.StringType:
		return "string"
	case ir.NumberType:
		return "number"
	case ir.BoolType:
		return "boolean"
	case ir.NullType:
		return "null"
	default:
		return node.Type.String()
	}
}

func enumHas(enum []string, v string) bool {
	for _, e := range enum {
		if e == v {
			return true
		}
	}
	return false
}

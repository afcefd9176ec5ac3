// Package hover answers documentation queries for a position in a
// parsed template, and produces the document's symbol outline.
package hover

import (
	"context"
	"fmt"
	"strings"

	"github.com/cfntools/cfnls/cfnspec"
	"github.com/cfntools/cfnls/ir"
	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/token"
)

// maxTypeDepth bounds the upward walk looking for the enclosing
// resource declaration. Resource properties nest, but not that deep.
const maxTypeDepth = 8

// Result is a documentation answer: markdown contents and the range of
// the hovered node.
type Result struct {
	Contents string
	Range    token.Range
}

// Hover returns the documentation for the node at offset, nil when
// nothing documentable is there. Errors surface only when the
// documentation source itself fails.
func Hover(ctx context.Context, doc *parse.Document, src cfnspec.Source, offset int) (*Result, error) {
	if doc.Root == nil || src == nil {
		return nil, nil
	}
	node := doc.NodeAt(offset)
	if node == nil {
		return nil, nil
	}
	if node.Type == ir.ObjectType || node.Type == ir.ArrayType || node.Type == ir.TagType {
		// inside a container's body but on none of its children
		return nil, nil
	}

	resObj, typeName := enclosingResource(node)
	if resObj == nil {
		return nil, nil
	}
	res, err := src.Resource(ctx, typeName)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}

	rng := doc.Pos.Rng(node.Start, node.End)
	if name, ok := propertyName(resObj, node); ok {
		prop, ok := res.Properties[name]
		if !ok {
			return nil, nil
		}
		return &Result{Contents: propertyMarkdown(typeName, name, prop), Range: rng}, nil
	}
	return &Result{Contents: resourceMarkdown(typeName, res), Range: rng}, nil
}

// enclosingResource walks up from node looking for an object carrying
// a Type field whose scalar value names a resource type. It returns
// that object and the type name.
func enclosingResource(node *ir.Node) (*ir.Node, string) {
	cur := node
	for depth := 0; cur != nil && depth < maxTypeDepth; depth++ {
		if cur.Type == ir.ObjectType {
			if t := scalarField(cur, "Type"); t != "" && strings.HasPrefix(t, "AWS::") {
				return cur, t
			}
		}
		cur = cur.Parent
	}
	return nil, ""
}

func scalarField(obj *ir.Node, name string) string {
	v := obj.Get(name)
	for v != nil && v.Type == ir.TagType {
		if len(v.Values) == 0 {
			return ""
		}
		v = v.Values[0]
	}
	if v == nil || !v.Type.IsLeaf() {
		return ""
	}
	return v.String
}

// propertyName reports which top-level property of the resource the
// node belongs to, when it sits under the resource's Properties block.
func propertyName(resObj, node *ir.Node) (string, bool) {
	props := resObj.Get("Properties")
	if props == nil || props.Type != ir.ObjectType {
		return "", false
	}
	var prev *ir.Node
	for cur := node; cur != nil; cur = cur.Parent {
		if cur == props {
			break
		}
		prev = cur
		if cur == resObj {
			return "", false
		}
	}
	if prev == nil || prev.Parent != props {
		return "", false
	}
	if prev.IsKey() {
		return prev.String, true
	}
	return prev.ParentField, prev.ParentField != ""
}

func propertyMarkdown(typeName, name string, prop cfnspec.Property) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n\n", name, typeName)
	kind := prop.PrimitiveType
	if kind == "" {
		kind = prop.Type
	}
	if kind != "" {
		fmt.Fprintf(&b, "Type: %s", kind)
		if prop.Required {
			b.WriteString(", required")
		}
		b.WriteString("\n\n")
	}
	if prop.UpdateType != "" {
		fmt.Fprintf(&b, "Update requires: %s\n\n", prop.UpdateType)
	}
	if prop.Documentation != "" {
		fmt.Fprintf(&b, "[AWS documentation](%s)", prop.Documentation)
	}
	return strings.TrimRight(b.String(), "\n")
}

func resourceMarkdown(typeName string, res *cfnspec.Resource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", typeName)
	if res.Documentation != "" {
		fmt.Fprintf(&b, "[AWS documentation](%s)", res.Documentation)
	}
	return strings.TrimRight(b.String(), "\n")
}

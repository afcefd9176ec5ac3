package hover

import (
	"strconv"

	"github.com/cfntools/cfnls/ir"
	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/token"
)

// Symbol is one entry of the document outline. Children mirror the
// tree: object entries under objects, indexed items under arrays.
type Symbol struct {
	Name           string
	Type           ir.Type
	Range          token.Range
	SelectionRange token.Range
	Children       []Symbol
}

// Symbols returns the nested outline of the document. Partial trees
// from invalid input still produce an outline for whatever parsed.
func Symbols(doc *parse.Document) []Symbol {
	if doc.Root == nil {
		return nil
	}
	return childSymbols(doc.Root, doc.Pos)
}

func childSymbols(node *ir.Node, pos *token.PosDoc) []Symbol {
	switch node.Type {
	case ir.ObjectType:
		var out []Symbol
		for i, key := range node.Fields {
			val := node.Values[i]
			sym := Symbol{
				Name:           key.String,
				SelectionRange: pos.Rng(key.Start, key.End),
				Range:          pos.Rng(key.Start, key.End),
			}
			if val != nil {
				sym.Type = val.Type
				sym.Range = pos.Rng(key.Start, val.End)
				sym.Children = childSymbols(val, pos)
			}
			out = append(out, sym)
		}
		return out
	case ir.ArrayType:
		var out []Symbol
		for i, item := range node.Values {
			out = append(out, Symbol{
				Name:           strconv.Itoa(i),
				Type:           item.Type,
				Range:          pos.Rng(item.Start, item.End),
				SelectionRange: pos.Rng(item.Start, item.End),
				Children:       childSymbols(item, pos),
			})
		}
		return out
	case ir.TagType:
		if len(node.Values) > 0 {
			return childSymbols(node.Values[0], pos)
		}
		return nil
	default:
		return nil
	}
}

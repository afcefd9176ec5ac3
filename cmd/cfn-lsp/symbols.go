package main

import (
	"context"

	"github.com/cfntools/cfnls/hover"
	"github.com/cfntools/cfnls/ir"
	"go.lsp.dev/protocol"
)

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	d := s.docs.get(string(params.TextDocument.URI))
	if d == nil {
		return nil, nil
	}
	syms := hover.Symbols(d.parsed)
	out := make([]interface{}, 0, len(syms))
	for _, sym := range syms {
		out = append(out, protoSymbol(sym))
	}
	return out, nil
}

func protoSymbol(sym hover.Symbol) protocol.DocumentSymbol {
	out := protocol.DocumentSymbol{
		Name:           sym.Name,
		Kind:           symbolKind(sym.Type),
		Range:          protoRange(sym.Range),
		SelectionRange: protoRange(sym.SelectionRange),
	}
	for _, child := range sym.Children {
		out.Children = append(out.Children, protoSymbol(child))
	}
	return out
}

func symbolKind(t ir.Type) protocol.SymbolKind {
	switch t {
	case ir.ObjectType:
		return protocol.SymbolKindObject
	case ir.ArrayType:
		return protocol.SymbolKindArray
	case ir.StringType:
		return protocol.SymbolKindString
	case ir.NumberType:
		return protocol.SymbolKindNumber
	case ir.BoolType:
		return protocol.SymbolKindBoolean
	case ir.NullType:
		return protocol.SymbolKindNull
	default:
		return protocol.SymbolKindKey
	}
}

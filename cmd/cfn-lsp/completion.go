package main

import (
	"context"

	"github.com/cfntools/cfnls/complete"
	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/token"
	"go.lsp.dev/protocol"
)

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	cfg, _, _ := s.snapshot()
	if !cfg.Completion {
		return nil, nil
	}
	d := s.docs.get(string(params.TextDocument.URI))
	if d == nil || d.schema == nil {
		return nil, nil
	}

	offset := d.parsed.Pos.Offset(token.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	})
	list := complete.Complete([]byte(d.text), d.schema, offset, parse.Tags(cfg.Tags()))

	items := make([]protocol.CompletionItem, 0, len(list.Items))
	for _, it := range list.Items {
		it = complete.Resolve(it)
		item := protocol.CompletionItem{
			Label:      it.Label,
			InsertText: it.InsertText,
			Detail:     it.Detail,
			Kind:       completionKind(it.Kind),
		}
		if it.Documentation != "" {
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: it.Documentation,
			}
		}
		items = append(items, item)
	}
	return &protocol.CompletionList{
		IsIncomplete: list.IsIncomplete,
		Items:        items,
	}, nil
}

// CompletionResolve is a no-op: items go out fully resolved. The
// capability is still advertised so clients that always resolve get
// their item back unchanged.
func (s *Server) CompletionResolve(ctx context.Context, params *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	return params, nil
}

func completionKind(k complete.Kind) protocol.CompletionItemKind {
	switch k {
	case complete.KindProperty:
		return protocol.CompletionItemKindProperty
	case complete.KindValue:
		return protocol.CompletionItemKindValue
	default:
		return protocol.CompletionItemKindText
	}
}

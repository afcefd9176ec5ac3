package main

import (
	"context"

	"github.com/cfntools/cfnls/hover"
	"github.com/cfntools/cfnls/token"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	cfg, _, spec := s.snapshot()
	if !cfg.Hover {
		return nil, nil
	}
	d := s.docs.get(string(params.TextDocument.URI))
	if d == nil {
		return nil, nil
	}

	offset := d.parsed.Pos.Offset(token.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	})
	res, err := hover.Hover(ctx, d.parsed, spec, offset)
	if err != nil {
		// documentation source trouble is not the client's problem
		s.log.Warn("hover lookup failed", zap.Error(err))
		return nil, nil
	}
	if res == nil {
		return nil, nil
	}

	rng := protoRange(res.Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: res.Contents,
		},
		Range: &rng,
	}, nil
}

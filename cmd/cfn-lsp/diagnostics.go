package main

import (
	"context"
	"strings"

	"github.com/cfntools/cfnls/debug"
	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/token"
	"github.com/cfntools/cfnls/validate"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
)

// refresh reparses a buffer and re-resolves its schema, storing and
// returning the new snapshot. Schema resolution failures degrade to no
// schema; the buffer still gets parse diagnostics.
func (s *Server) refresh(ctx context.Context, uriStr, text string, version int32) *document {
	cfg, registry, _ := s.snapshot()
	parsed := parse.Parse([]byte(text), parse.Tags(cfg.Tags()))
	sch, err := registry.SchemaForResource(ctx, uriStr, text)
	if err != nil {
		s.log.Warn("schema resolution failed",
			zap.String("uri", uriStr), zap.Error(err))
	}
	d := &document{uri: uriStr, text: text, version: version, parsed: parsed, schema: sch}
	s.docs.put(d)
	return d
}

func (s *Server) publishDiagnostics(ctx context.Context, d *document) {
	cfg, _, _ := s.snapshot()
	diagnostics := []protocol.Diagnostic{}
	if cfg.Validate {
		for _, diag := range validate.Validate(d.parsed, d.schema) {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    protoRange(diag.Range),
				Severity: protocol.DiagnosticSeverityError,
				Source:   diag.Source,
				Message:  diag.Message,
			})
		}
	}
	params := &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(d.uri),
		Diagnostics: diagnostics,
	}
	if debug.Rpc() {
		debug.LogAny(params)
	}
	if s.conn != nil {
		s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, params)
	}
}

func (s *Server) revalidateAll(ctx context.Context) {
	for _, d := range s.docs.all() {
		d = s.refresh(ctx, d.uri, d.text, d.version)
		s.publishDiagnostics(ctx, d)
	}
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	d := s.refresh(ctx, string(params.TextDocument.URI), params.TextDocument.Text, params.TextDocument.Version)
	s.publishDiagnostics(ctx, d)
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// full sync: the last change carries the whole document
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	d := s.refresh(ctx, string(params.TextDocument.URI), text, params.TextDocument.Version)
	s.publishDiagnostics(ctx, d)
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.remove(string(params.TextDocument.URI))
	if s.conn != nil {
		s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if d := s.docs.get(string(params.TextDocument.URI)); d != nil {
		s.publishDiagnostics(ctx, d)
	}
	return nil
}

// DidChangeWatchedFiles evicts cached schemas for files that changed on
// disk and revalidates every open buffer when something was evicted.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	_, registry, _ := s.snapshot()
	evicted := false
	for _, change := range params.Changes {
		u := string(change.URI)
		if registry.Reset(u) {
			evicted = true
		}
		if strings.HasPrefix(u, "file://") {
			if registry.Reset(uri.URI(u).Filename()) {
				evicted = true
			}
		}
	}
	if evicted {
		s.revalidateAll(ctx)
	}
	return nil
}

func protoRange(r token.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

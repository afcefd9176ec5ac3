package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cfntools/cfnls/cfnspec"
	"github.com/cfntools/cfnls/config"
	"github.com/cfntools/cfnls/schema"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
)

type Server struct {
	conn jsonrpc2.Conn
	log  *zap.Logger
	docs *documentStore

	mu       sync.RWMutex
	cfg      config.Config
	registry *schema.Registry
	spec     cfnspec.Source
}

func newServer(log *zap.Logger) *Server {
	return &Server{
		log:      log,
		docs:     &documentStore{docs: make(map[string]*document)},
		cfg:      config.Default(),
		registry: schema.NewRegistry(&schema.DefaultFetcher{}, ""),
		spec:     cfnspec.NewHTTPSource(""),
	}
}

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	root := ""
	if params.RootURI != "" {
		root = uri.URI(params.RootURI).Filename()
	} else if params.RootPath != "" {
		root = params.RootPath
	}

	cfg, err := decodeConfig(params.InitializationOptions)
	if err != nil {
		s.log.Warn("bad initialization options", zap.Error(err))
		cfg = config.Default()
	}

	s.mu.Lock()
	s.registry = schema.NewRegistry(&schema.DefaultFetcher{}, root)
	s.mu.Unlock()
	s.applyConfig(cfg)

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			Change:    protocol.TextDocumentSyncKindFull,
			OpenClose: true,
			Save:      &protocol.SaveOptions{IncludeText: false},
		},
		HoverProvider: true,
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{":", " ", "!", "-"},
			ResolveProvider:   true,
		},
		DocumentSymbolProvider: true,
	}

	return &protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    lsName,
			Version: version,
		},
	}, nil
}

// applyConfig installs a new configuration: schema bindings and the
// documentation source follow it. Bad bindings keep the previous set.
func (s *Server) applyConfig(cfg config.Config) {
	bindings, err := cfg.Bindings()

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cfg
	s.cfg = cfg
	if err != nil {
		s.log.Warn("bad schema bindings, keeping previous", zap.Error(err))
	} else {
		s.registry.SetBindings(bindings)
	}
	if cfg.SpecURL != old.SpecURL || s.spec == nil {
		s.spec = cfnspec.NewHTTPSource(cfg.SpecURL)
	}
}

func (s *Server) snapshot() (config.Config, *schema.Registry, cfnspec.Source) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.registry, s.spec
}

// decodeConfig accepts the raw settings value from the wire, possibly
// wrapped in a section named after the server.
func decodeConfig(v any) (config.Config, error) {
	cfg := config.Default()
	if v == nil {
		return cfg, nil
	}
	if m, ok := v.(map[string]any); ok {
		if sub, ok := m["cfnls"]; ok {
			v = sub
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	cfg, err := decodeConfig(params.Settings)
	if err != nil {
		s.log.Warn("bad configuration change", zap.Error(err))
		return nil
	}
	s.applyConfig(cfg)
	s.revalidateAll(ctx)
	return nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	return nil
}

func (s *Server) SetTrace(ctx context.Context, params *protocol.SetTraceParams) error {
	return nil
}

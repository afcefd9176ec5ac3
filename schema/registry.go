package schema

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cfntools/cfnls/debug"
)

// Binding pairs a document matcher with a schema: either inline or a
// URI to fetch. Bindings are consulted in registration order; more
// specific matchers must be registered before generic ones.
type Binding struct {
	Match  Matcher
	URI    string
	Inline *Schema
}

// Registry resolves documents to schemas. Fetched schemas are cached
// by resolved URI; Reset evicts a cache entry. Safe for concurrent
// use: the cache is append/evict-only and an eviction never mutates a
// schema already handed out.
type Registry struct {
	fetcher Fetcher
	root    string // workspace root, for relative URIs

	mu       sync.RWMutex
	bindings []Binding
	cache    map[string]*cacheEntry
}

type cacheEntry struct {
	once   sync.Once
	schema *Schema
	err    error
}

func NewRegistry(fetcher Fetcher, workspaceRoot string) *Registry {
	return &Registry{
		fetcher: fetcher,
		root:    workspaceRoot,
		cache:   make(map[string]*cacheEntry),
	}
}

// Add appends a binding. Registration order is resolution order.
func (r *Registry) Add(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = append(r.bindings, b)
}

// SetBindings replaces the binding list, keeping the schema cache.
func (r *Registry) SetBindings(bs []Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = bs
}

// SchemaForResource resolves the schema applicable to the document
// identified by uri with content text. The first binding whose matcher
// accepts the document wins. It returns (nil, nil) when no binding
// matches, and (nil, err) when the winning binding's schema could not
// be fetched or parsed. Callers degrade to "no schema" either way.
func (r *Registry) SchemaForResource(ctx context.Context, uri, text string) (*Schema, error) {
	r.mu.RLock()
	bindings := r.bindings
	r.mu.RUnlock()
	for _, b := range bindings {
		if b.Match != nil && !b.Match(uri, text) {
			continue
		}
		if b.Inline != nil {
			return b.Inline, nil
		}
		if b.URI == "" {
			continue
		}
		return r.load(ctx, b.URI)
	}
	return nil, nil
}

// Reset evicts the cache entry for uri and reports whether an eviction
// occurred, so callers can decide whether dependent documents need
// revalidation.
func (r *Registry) Reset(uri string) bool {
	key := r.resolveURI(uri)
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cache[key]
	delete(r.cache, key)
	return ok
}

func (r *Registry) load(ctx context.Context, uri string) (*Schema, error) {
	key := r.resolveURI(uri)
	r.mu.Lock()
	e := r.cache[key]
	if e == nil {
		e = &cacheEntry{}
		r.cache[key] = e
	}
	r.mu.Unlock()
	e.once.Do(func() {
		d, err := r.fetcher.Fetch(ctx, key)
		if err != nil {
			e.err = fmt.Errorf("%w: %q: %v", ErrFetch, key, err)
		} else {
			e.schema, e.err = FromBytes(d)
		}
		if debug.Schema() {
			debug.Logf("schema: fetch %s err=%v", key, e.err)
		}
	})
	return e.schema, e.err
}

// resolveURI resolves a relative schema URI against the workspace
// root. Absolute paths and URIs with a scheme pass through.
func (r *Registry) resolveURI(u string) string {
	if strings.Contains(u, "://") || filepath.IsAbs(u) || r.root == "" {
		return u
	}
	return filepath.Join(r.root, u)
}

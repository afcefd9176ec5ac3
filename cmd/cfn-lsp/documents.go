package main

import (
	"sync"

	"github.com/cfntools/cfnls/parse"
	"github.com/cfntools/cfnls/schema"
)

type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

// document is one open editor buffer with its parse result and the
// schema resolved for it. Re-created wholesale on every change; readers
// holding an old snapshot keep a consistent view.
type document struct {
	uri     string
	text    string
	version int32
	parsed  *parse.Document
	schema  *schema.Schema
}

func (ds *documentStore) get(uri string) *document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.docs[uri]
}

func (ds *documentStore) put(d *document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs[d.uri] = d
}

func (ds *documentStore) remove(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, uri)
}

func (ds *documentStore) all() []*document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	out := make([]*document, 0, len(ds.docs))
	for _, d := range ds.docs {
		out = append(out, d)
	}
	return out
}

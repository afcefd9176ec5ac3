// Package cfnspec reads the published CloudFormation resource
// specification and answers documentation lookups by resource type and
// property name.
package cfnspec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/goccy/go-yaml"
)

// DefaultURL is the latest published resource specification for
// us-east-1.
const DefaultURL = "https://d1uauaxba7bl26.cloudfront.net/latest/gzip/CloudFormationResourceSpecification.json"

// ErrUnavailable wraps every failure to obtain the specification.
var ErrUnavailable = errors.New("resource specification unavailable")

// Source answers documentation lookups. A nil Resource with a nil
// error means the type is simply not in the specification.
type Source interface {
	Resource(ctx context.Context, typeName string) (*Resource, error)
}

// Resource is one resource type's entry.
type Resource struct {
	Documentation string              `yaml:"Documentation"`
	Properties    map[string]Property `yaml:"Properties"`
}

type Property struct {
	Documentation string `yaml:"Documentation"`
	PrimitiveType string `yaml:"PrimitiveType"`
	Type          string `yaml:"Type"`
	Required      bool   `yaml:"Required"`
	UpdateType    string `yaml:"UpdateType"`
}

type document struct {
	ResourceTypes map[string]*Resource `yaml:"ResourceTypes"`
}

// HTTPSource fetches the specification over HTTP on first use and
// serves every later lookup from memory. A failed fetch is sticky for
// the life of the source; construct a new one to retry.
type HTTPSource struct {
	URL    string
	Client *http.Client

	once sync.Once
	doc  *document
	err  error
}

func NewHTTPSource(url string) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPSource{URL: url}
}

func (s *HTTPSource) Resource(ctx context.Context, typeName string) (*Resource, error) {
	s.once.Do(func() {
		s.doc, s.err = s.fetch(ctx)
	})
	if s.err != nil {
		return nil, s.err
	}
	return s.doc.ResourceTypes[typeName], nil
}

func (s *HTTPSource) fetch(ctx context.Context) (*document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnavailable, s.URL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &doc, nil
}

// Static serves lookups from an in-memory table. Used in tests and for
// offline bundles.
type Static map[string]*Resource

func (s Static) Resource(_ context.Context, typeName string) (*Resource, error) {
	return s[typeName], nil
}

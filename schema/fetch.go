package schema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.lsp.dev/uri"
)

// Fetcher retrieves the raw bytes of a schema document by URI. Results
// are memoized by the Registry, not here.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// HTTPFetcher fetches http(s) schema URIs.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FileFetcher reads schema documents from disk, accepting both plain
// paths and file: URIs.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	path := u
	if strings.HasPrefix(u, "file://") {
		path = uri.URI(u).Filename()
	}
	return os.ReadFile(path)
}

// DefaultFetcher routes by scheme: http(s) to the network, everything
// else to disk.
type DefaultFetcher struct {
	HTTP HTTPFetcher
	File FileFetcher
}

func (f *DefaultFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return f.HTTP.Fetch(ctx, u)
	}
	return f.File.Fetch(ctx, u)
}

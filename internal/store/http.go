package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mediakit/internal/media"
)

// HTTPStore talks to a plain HTTP object endpoint: objects are uploaded with
// PUT <base>/<key> and downloaded with GET on any http(s) URL.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore creates a store for the endpoint at baseURL.
// client may be nil to use http.DefaultClient.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Put uploads r to <base>/<key>, with each key segment path-escaped.
func (h *HTTPStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	target := h.baseURL + "/" + escapeKey(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, r)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("uploading %s: unexpected status %s", key, resp.Status)
	}
	return target, nil
}

// Open starts a GET on url. ContentLength is -1 when the server omits it.
func (h *HTTPStore) Open(ctx context.Context, url string) (*media.RemoteObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}
	return &media.RemoteObject{Body: resp.Body, ContentLength: resp.ContentLength}, nil
}

// ValidateSetup checks that the endpoint answers.
func (h *HTTPStore) ValidateSetup(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("store endpoint not reachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("store endpoint unhealthy: %s", resp.Status)
	}
	return nil
}

// Compile-time check that HTTPStore implements media.RemoteStore interface
var _ media.RemoteStore = (*HTTPStore)(nil)

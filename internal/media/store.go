package media

import (
	"context"
	"io"
)

// RemoteObject is an open download from the remote store.
type RemoteObject struct {
	Body io.ReadCloser

	// ContentLength as reported by the transfer response; -1 when absent.
	ContentLength int64
}

// RemoteStore is the external object storage endpoint.
// Put is not idempotent from the pipeline's point of view: callers derive a
// fresh key for every upload, so repeated uploads create distinct objects.
type RemoteStore interface {
	// Put stores everything read from r under key and returns the URL the
	// object can be downloaded from.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Open starts a download of the object at url. The caller closes Body.
	Open(ctx context.Context, url string) (*RemoteObject, error)

	// ValidateSetup verifies that the store is reachable and configured.
	ValidateSetup(ctx context.Context) error
}

// Sealer optionally encrypts objects before they leave the device.
type Sealer interface {
	// Seal returns a writer that encrypts into w. Close flushes the final
	// chunk and must be called before w is consumed.
	Seal(w io.Writer) (io.WriteCloser, error)

	// Unseal inspects the head of r. When the content was produced by Seal it
	// returns a plaintext reader and true; otherwise it returns a reader over
	// the unchanged content and false.
	Unseal(r io.Reader) (io.Reader, bool, error)
}

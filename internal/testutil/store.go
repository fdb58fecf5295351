package testutil

import (
	"context"
	"io"

	"mediakit/internal/media"
)

// FailingStore is a media.RemoteStore whose every operation fails with Err.
// Put drains the body first so a sealing writer on the other end of a pipe
// is not left blocked.
type FailingStore struct {
	Err error
}

// Compile-time check that FailingStore implements media.RemoteStore interface
var _ media.RemoteStore = (*FailingStore)(nil)

func (s *FailingStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	io.Copy(io.Discard, r)
	return "", s.Err
}

func (s *FailingStore) Open(ctx context.Context, url string) (*media.RemoteObject, error) {
	return nil, s.Err
}

func (s *FailingStore) ValidateSetup(context.Context) error {
	return s.Err
}

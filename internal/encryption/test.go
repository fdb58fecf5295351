package encryption

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"mediakit/internal/media"
)

// testHeader is prepended by TestSealer so sealed output clearly differs from
// plaintext while staying deterministic and reversible.
var testHeader = []byte("MKSEAL\x00\x00")

// TestSealer is a deterministic sealer for tests and local development.
// It prepends a fixed 8-byte header when sealing and strips it when unsealing.
type TestSealer struct{}

// Compile-time check that TestSealer implements media.Sealer interface
var _ media.Sealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (*TestSealer) Seal(w io.Writer) (io.WriteCloser, error) {
	if _, err := w.Write(testHeader); err != nil {
		return nil, fmt.Errorf("writing test header: %w", err)
	}
	return nopWriteCloser{w}, nil
}

func (*TestSealer) Unseal(r io.Reader) (io.Reader, bool, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(testHeader))
	if err != nil && err != io.EOF {
		return nil, false, fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(head, testHeader) {
		return br, false, nil
	}
	if _, err := br.Discard(len(testHeader)); err != nil {
		return nil, false, fmt.Errorf("skipping test header: %w", err)
	}
	return br, true, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

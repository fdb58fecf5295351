package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
)

// TransferService moves MediaFile records between local storage and the
// remote store. It never retries; retry policy belongs to the caller.
type TransferService struct {
	store   RemoteStore
	sealer  Sealer
	layout  *Layout
	builder *Builder
	fsys    Filesystem
	logger  Logger
	clock   Clock
}

// NewTransferService creates a TransferService. sealer may be nil, in which
// case objects are stored as-is.
func NewTransferService(store RemoteStore, sealer Sealer, layout *Layout, builder *Builder, fsys Filesystem, logger Logger, clock Clock) *TransferService {
	return &TransferService{
		store:   store,
		sealer:  sealer,
		layout:  layout,
		builder: builder,
		fsys:    fsys,
		logger:  logger,
		clock:   clock,
	}
}

// ObjectKey derives the remote key for an upload of f at the current time.
func (s *TransferService) ObjectKey(f *MediaFile) string {
	return fmt.Sprintf("%s/%d_%s", f.Type, s.clock.Now().UnixMilli(), f.Name)
}

// Upload sends f to the remote store and returns its URL. f.IsUploaded is set
// only after the store acknowledged the write; on failure f is unchanged.
// Every call creates a new remote object.
func (s *TransferService) Upload(ctx context.Context, f *MediaFile) (string, error) {
	src := f.LocalPath
	if src == "" {
		src = f.URI
	}
	if src == "" {
		return "", fmt.Errorf("%w: uploading %s: %w", ErrTransferFailed, f.ID, ErrNoLocalCopy)
	}

	in, err := s.fsys.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", ErrTransferFailed, src, err)
	}
	defer in.Close()

	body, wait := s.sealed(in)
	key := s.ObjectKey(f)

	url, err := s.store.Put(ctx, key, body, f.MimeType)
	if werr := wait(err); err == nil && werr != nil {
		err = werr
	}
	if err != nil {
		s.logger.Error("upload failed", "id", f.ID, "key", key, "error", err)
		return "", fmt.Errorf("%w: uploading %s: %w", ErrTransferFailed, f.Name, err)
	}

	f.IsUploaded = true
	f.RemoteURL = url
	s.logger.Info("file uploaded", "id", f.ID, "key", key, "url", url)
	return url, nil
}

// sealed returns the reader to upload. With a sealer configured the content
// is encrypted through a pipe; wait reports any sealing error once the store
// has stopped reading. A store that reported success without draining the
// pipe did not receive the whole ciphertext, so the closed pipe is then an
// error too.
func (s *TransferService) sealed(in io.Reader) (io.Reader, func(putErr error) error) {
	if s.sealer == nil {
		return in, func(error) error { return nil }
	}

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := seal(s.sealer, pw, in)
		pw.CloseWithError(err)
		done <- err
	}()

	return pr, func(putErr error) error {
		// Unblock the sealing goroutine if the store stopped reading early.
		pr.Close()
		err := <-done
		switch {
		case err == nil:
			return nil
		case errors.Is(err, io.ErrClosedPipe) && putErr != nil:
			return nil
		case errors.Is(err, io.ErrClosedPipe):
			return fmt.Errorf("store accepted a partial upload: %w", err)
		}
		return fmt.Errorf("sealing content: %w", err)
	}
}

func seal(sealer Sealer, w io.Writer, r io.Reader) error {
	sw, err := sealer.Seal(w)
	if err != nil {
		return err
	}
	if _, err := io.Copy(sw, r); err != nil {
		sw.Close()
		return err
	}
	return sw.Close()
}

// Download fetches url into the local directory for t and returns a record
// that is already marked uploaded. The MIME type comes from t, not from the
// content.
func (s *TransferService) Download(ctx context.Context, url string, t MediaType) (*MediaFile, error) {
	dir, err := s.layout.ResolveDirectory(t)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving directory: %w", ErrTransferFailed, err)
	}
	dest := filepath.Join(dir, s.layout.ResolveFileName(t, url))

	obj, err := s.store.Open(ctx, url)
	if err != nil {
		s.logger.Error("download failed", "url", url, "error", err)
		return nil, fmt.Errorf("%w: fetching %s: %w", ErrTransferFailed, url, err)
	}
	defer obj.Body.Close()

	if obj.ContentLength > 0 {
		free, err := s.fsys.FreeSpace(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: checking free space: %w", ErrTransferFailed, err)
		}
		if free >= 0 && obj.ContentLength > free {
			return nil, fmt.Errorf("%w: insufficient storage: need %d bytes, %d available", ErrTransferFailed, obj.ContentLength, free)
		}
	}

	var body io.Reader = obj.Body
	unsealed := false
	if s.sealer != nil {
		body, unsealed, err = s.sealer.Unseal(obj.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: unsealing %s: %w", ErrTransferFailed, url, err)
		}
	}

	written, err := s.fsys.WriteFile(dest, body)
	if err != nil {
		return nil, fmt.Errorf("%w: writing %s: %w", ErrTransferFailed, dest, err)
	}

	size := obj.ContentLength
	if unsealed {
		size = written
	}
	if size < 0 {
		size = 0
	}

	f := s.builder.FromDownload(url, t, dest, size)
	s.logger.Info("file downloaded", "url", url, "path", dest, "size", size)
	return f, nil
}

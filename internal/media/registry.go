package media

import "context"

// Registry persists the MediaFile records the pipeline produces.
type Registry interface {
	Save(ctx context.Context, f *MediaFile) error

	// MarkUploaded records a confirmed upload.
	MarkUploaded(ctx context.Context, id string, remoteURL string) error

	// Find returns the record with the given ID, or nil if there is none.
	Find(ctx context.Context, id string) (*MediaFile, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]*MediaFile, error)

	Close() error
}

// Package registry persists the MediaFile records the pipeline produces.
package registry

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an update names a record that does not exist.
var ErrNotFound = errors.New("media file not found")

// Upload is one confirmed upload of a record. A record uploaded twice has two
// entries, each with its own remote object.
type Upload struct {
	RemoteURL  string
	UploadedAt time.Time
}

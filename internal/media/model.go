package media

import (
	"fmt"
	"time"
)

// MediaType is the category of an attachment.
type MediaType string

const (
	TypeImage    MediaType = "image"
	TypeAudio    MediaType = "audio"
	TypeVideo    MediaType = "video"
	TypeDocument MediaType = "document"
)

// mimeTypes is the fixed type -> MIME mapping. Content is never sniffed.
var mimeTypes = map[MediaType]string{
	TypeImage:    "image/jpeg",
	TypeAudio:    "audio/m4a",
	TypeVideo:    "video/mp4",
	TypeDocument: "application/pdf",
}

var extensions = map[MediaType]string{
	TypeImage:    ".jpg",
	TypeAudio:    ".m4a",
	TypeVideo:    ".mp4",
	TypeDocument: ".pdf",
}

// ParseMediaType validates a raw type string.
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(s)
	if _, ok := mimeTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, s)
	}
	return t, nil
}

// MimeType returns the MIME type assigned to t.
func (t MediaType) MimeType() string {
	return mimeTypes[t]
}

// Extension returns the default file extension for t, including the dot.
func (t MediaType) Extension() string {
	return extensions[t]
}

// HasDuration reports whether records of this type carry a duration.
func (t MediaType) HasDuration() bool {
	return t == TypeAudio || t == TypeVideo
}

// MediaFile is the normalized record for a piece of attached media.
//
// A record only reports IsUploaded after the remote store acknowledged the
// write. Everything except IsUploaded and RemoteURL is fixed at creation.
type MediaFile struct {
	ID         string
	URI        string
	Type       MediaType
	Name       string
	Size       int64
	MimeType   string
	Duration   *int64 // milliseconds, audio/video only
	LocalPath  string // empty for remote-only records
	IsUploaded bool
	RemoteURL  string
	CreatedAt  time.Time
}

// DurationMillis returns the duration or 0 when absent.
func (f *MediaFile) DurationMillis() int64 {
	if f.Duration == nil {
		return 0
	}
	return *f.Duration
}

// HasLocalCopy reports whether a local copy exists for this record.
func (f *MediaFile) HasLocalCopy() bool {
	return f.LocalPath != ""
}

// RecordingState is the transient status of the in-progress voice capture.
type RecordingState struct {
	IsRecording  bool
	Duration     int64 // milliseconds since start
	RecordingURI string
}

package media

import "errors"

var (
	// ErrPermissionDenied is returned when the OS refuses microphone or
	// library-write access.
	ErrPermissionDenied = errors.New("permission denied")

	// recorder state machine
	ErrSessionAlreadyActive = errors.New("recording session already active")
	ErrNoActiveSession      = errors.New("no active recording session")

	// ErrEmptyRecordingURI means the native layer produced no artifact.
	// The session has still been released.
	ErrEmptyRecordingURI = errors.New("recording produced no file uri")

	// ErrTransferFailed covers network and local storage failures during
	// upload or download. Nothing is retried internally.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrNoLocalCopy is returned when an operation needs the file on disk
	// but the record only has a remote URL.
	ErrNoLocalCopy = errors.New("no local copy")

	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrNotImplemented       = errors.New("not implemented")
)

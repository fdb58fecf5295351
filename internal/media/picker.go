package media

import "context"

// PickStatus tells a caller whether picking produced a file.
type PickStatus int

const (
	// PickUnavailable means no picker integration is installed.
	PickUnavailable PickStatus = iota
	PickCancelled
	PickSelected
)

func (s PickStatus) String() string {
	switch s {
	case PickUnavailable:
		return "unavailable"
	case PickCancelled:
		return "cancelled"
	case PickSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// PickResult is the outcome of an image pick. An absent feature is a result,
// not an error, so callers can tell "not available" from "failed".
type PickResult struct {
	Status PickStatus
	File   *MediaFile // set when Status == PickSelected
}

// Err maps the result onto the error taxonomy for callers that prefer it.
func (r PickResult) Err() error {
	if r.Status == PickUnavailable {
		return ErrNotImplemented
	}
	return nil
}

// ImagePicker lets the user choose an image from the device.
type ImagePicker interface {
	PickImage(ctx context.Context) (PickResult, error)
}

// UnavailablePicker is installed until a real picker integration exists.
type UnavailablePicker struct{}

func (UnavailablePicker) PickImage(context.Context) (PickResult, error) {
	return PickResult{Status: PickUnavailable}, nil
}

package media

import "context"

// Permission names an OS-level capability.
type Permission string

const (
	PermissionMicrophone   Permission = "microphone"
	PermissionLibraryWrite Permission = "library-write"
)

// Permissions is the OS permission subsystem.
type Permissions interface {
	// Request asks for p and reports whether it was granted.
	Request(ctx context.Context, p Permission) (bool, error)
}

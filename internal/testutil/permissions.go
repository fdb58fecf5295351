package testutil

import (
	"context"
	"sync"

	"mediakit/internal/media"
)

// StaticPermissions answers permission requests from a fixed table.
// Permissions not in the table are denied.
type StaticPermissions struct {
	mu       sync.Mutex
	grants   map[media.Permission]bool
	Err      error
	Requests []media.Permission
}

// Compile-time check that StaticPermissions implements media.Permissions interface
var _ media.Permissions = (*StaticPermissions)(nil)

// GrantAll returns StaticPermissions that grant every permission.
func GrantAll() *StaticPermissions {
	return &StaticPermissions{grants: map[media.Permission]bool{
		media.PermissionMicrophone:   true,
		media.PermissionLibraryWrite: true,
	}}
}

// DenyAll returns StaticPermissions that deny every permission.
func DenyAll() *StaticPermissions {
	return &StaticPermissions{grants: map[media.Permission]bool{}}
}

func (p *StaticPermissions) Request(ctx context.Context, perm media.Permission) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = append(p.Requests, perm)
	if p.Err != nil {
		return false, p.Err
	}
	return p.grants[perm], nil
}

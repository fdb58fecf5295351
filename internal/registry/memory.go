package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mediakit/internal/media"
)

// MemoryRegistry keeps records in memory. Safe for concurrent use.
type MemoryRegistry struct {
	mu      sync.Mutex
	files   map[string]*entry
	seq     int
	clock   media.Clock
	uploads map[string][]Upload
}

type entry struct {
	file *media.MediaFile
	seq  int
}

// Compile-time check that MemoryRegistry implements media.Registry interface
var _ media.Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty registry. A nil clock means the real clock.
func NewMemoryRegistry(clock media.Clock) *MemoryRegistry {
	if clock == nil {
		clock = media.RealClock{}
	}
	return &MemoryRegistry{
		files:   make(map[string]*entry),
		clock:   clock,
		uploads: make(map[string][]Upload),
	}
}

func (r *MemoryRegistry) Save(ctx context.Context, f *media.MediaFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := copyFile(f)
	if old, ok := r.files[f.ID]; ok {
		c.CreatedAt = old.file.CreatedAt
		old.file = c
		return nil
	}
	r.seq++
	r.files[f.ID] = &entry{file: c, seq: r.seq}
	return nil
}

func (r *MemoryRegistry) MarkUploaded(ctx context.Context, id, remoteURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.files[id]
	if !ok {
		return fmt.Errorf("marking %s uploaded: %w", id, ErrNotFound)
	}
	e.file.IsUploaded = true
	e.file.RemoteURL = remoteURL
	r.uploads[id] = append(r.uploads[id], Upload{RemoteURL: remoteURL, UploadedAt: r.clock.Now()})
	return nil
}

func (r *MemoryRegistry) Find(ctx context.Context, id string) (*media.MediaFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.files[id]
	if !ok {
		return nil, nil
	}
	return copyFile(e.file), nil
}

func (r *MemoryRegistry) List(ctx context.Context) ([]*media.MediaFile, error) {
	type snapshot struct {
		file *media.MediaFile
		seq  int
	}

	r.mu.Lock()
	snaps := make([]snapshot, 0, len(r.files))
	for _, e := range r.files {
		snaps = append(snaps, snapshot{file: copyFile(e.file), seq: e.seq})
	}
	r.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool {
		a, b := snaps[i], snaps[j]
		if !a.file.CreatedAt.Equal(b.file.CreatedAt) {
			return a.file.CreatedAt.After(b.file.CreatedAt)
		}
		return a.seq > b.seq
	})

	files := make([]*media.MediaFile, len(snaps))
	for i, s := range snaps {
		files[i] = s.file
	}
	return files, nil
}

// Uploads returns the upload history of a record, oldest first.
func (r *MemoryRegistry) Uploads(ctx context.Context, id string) ([]Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Upload(nil), r.uploads[id]...), nil
}

func (r *MemoryRegistry) Close() error { return nil }

func copyFile(f *media.MediaFile) *media.MediaFile {
	c := *f
	if f.Duration != nil {
		d := *f.Duration
		c.Duration = &d
	}
	return &c
}

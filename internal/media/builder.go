package media

import (
	"fmt"
	"path/filepath"
)

// Builder converts raw captured or downloaded artifacts into MediaFile records.
type Builder struct {
	fsys  Filesystem
	clock Clock
	idgen IDGenerator
}

// NewBuilder creates a Builder.
func NewBuilder(fsys Filesystem, clock Clock, idgen IDGenerator) *Builder {
	return &Builder{fsys: fsys, clock: clock, idgen: idgen}
}

// FromCapture wraps a recording that has been copied to localPath.
// Size is read from the filesystem.
func (b *Builder) FromCapture(localPath string, durationMillis int64) (*MediaFile, error) {
	info, err := b.fsys.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("reading recording info: %w", err)
	}
	f := b.newFile(TypeAudio, filepath.Base(localPath), info.Size())
	f.URI = localPath
	f.LocalPath = localPath
	f.Duration = &durationMillis
	return f, nil
}

// FromDownload wraps an object fetched from remoteURL into localPath.
// size comes from the transfer response; pass 0 when it was not reported.
func (b *Builder) FromDownload(remoteURL string, t MediaType, localPath string, size int64) *MediaFile {
	f := b.newFile(t, filepath.Base(localPath), size)
	f.URI = remoteURL
	f.RemoteURL = remoteURL
	f.LocalPath = localPath
	f.IsUploaded = true
	return f
}

// FromLocalFile wraps an existing file that was not produced by the pipeline,
// e.g. a document the user imported.
func (b *Builder) FromLocalFile(localPath string, t MediaType) (*MediaFile, error) {
	if _, err := ParseMediaType(string(t)); err != nil {
		return nil, err
	}
	info, err := b.fsys.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("reading file info: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", localPath)
	}
	f := b.newFile(t, filepath.Base(localPath), info.Size())
	f.URI = localPath
	f.LocalPath = localPath
	return f, nil
}

func (b *Builder) newFile(t MediaType, name string, size int64) *MediaFile {
	if size < 0 {
		size = 0
	}
	return &MediaFile{
		ID:        b.idgen.New(),
		Type:      t,
		Name:      name,
		Size:      size,
		MimeType:  t.MimeType(),
		CreatedAt: b.clock.Now(),
	}
}

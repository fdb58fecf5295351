package media_test

import (
	"context"
	"errors"
	"testing"

	"mediakit/internal/media"
	"mediakit/internal/testutil"
)

func TestExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		caps      media.LibraryCapabilities
		album     string
		file      *media.MediaFile
		wantSaved int
		wantAlbum string
	}{
		{
			name:      "image saves directly",
			file:      &media.MediaFile{ID: "1", Type: media.TypeImage, LocalPath: "/docs/images/a.jpg"},
			wantSaved: 1,
		},
		{
			name:      "video saves directly",
			file:      &media.MediaFile{ID: "2", Type: media.TypeVideo, LocalPath: "/docs/videos/a.mp4"},
			wantSaved: 1,
		},
		{
			name:      "audio with direct save",
			caps:      media.LibraryCapabilities{DirectAudioSave: true},
			file:      &media.MediaFile{ID: "3", Type: media.TypeAudio, LocalPath: "/docs/audio/a.m4a"},
			wantSaved: 1,
		},
		{
			name:      "audio goes to default album",
			file:      &media.MediaFile{ID: "4", Type: media.TypeAudio, LocalPath: "/docs/audio/a.m4a"},
			wantAlbum: media.DefaultAudioAlbum,
		},
		{
			name:      "audio goes to configured album",
			album:     "Voice Notes",
			file:      &media.MediaFile{ID: "5", Type: media.TypeAudio, LocalPath: "/docs/audio/a.m4a"},
			wantAlbum: "Voice Notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := testutil.NewFakeLibrary(tt.caps)
			exp := media.NewExporter(testutil.GrantAll(), lib, tt.album, media.NewNopLogger())

			if err := exp.Export(context.Background(), tt.file); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if len(lib.Saved) != tt.wantSaved {
				t.Errorf("saved %d files, want %d", len(lib.Saved), tt.wantSaved)
			}
			if tt.wantAlbum != "" {
				if len(lib.Assets) != 1 {
					t.Fatalf("created %d assets, want 1", len(lib.Assets))
				}
				if got := lib.Albums[tt.wantAlbum]; len(got) != 1 || got[0] != lib.Assets[0].ID {
					t.Errorf("album %q = %v, want [%s]", tt.wantAlbum, got, lib.Assets[0].ID)
				}
			}
		})
	}
}

func TestExporter_DocumentUnsupported(t *testing.T) {
	perms := testutil.GrantAll()
	lib := testutil.NewFakeLibrary(media.LibraryCapabilities{DirectAudioSave: true})
	exp := media.NewExporter(perms, lib, "", media.NewNopLogger())

	err := exp.Export(context.Background(), &media.MediaFile{Type: media.TypeDocument, LocalPath: "/docs/a.pdf"})
	if !errors.Is(err, media.ErrUnsupportedMediaType) {
		t.Fatalf("Export() error = %v, want ErrUnsupportedMediaType", err)
	}
	if len(perms.Requests) != 0 {
		t.Error("permission requested for an unsupported type")
	}
	if len(lib.Saved) != 0 {
		t.Error("document was saved to the library")
	}
}

func TestExporter_PermissionDenied(t *testing.T) {
	lib := testutil.NewFakeLibrary(media.LibraryCapabilities{})
	exp := media.NewExporter(testutil.DenyAll(), lib, "", media.NewNopLogger())

	err := exp.Export(context.Background(), &media.MediaFile{Type: media.TypeImage, LocalPath: "/docs/a.jpg"})
	if !errors.Is(err, media.ErrPermissionDenied) {
		t.Fatalf("Export() error = %v, want ErrPermissionDenied", err)
	}
	if len(lib.Saved) != 0 || len(lib.Assets) != 0 {
		t.Error("library written without permission")
	}
}

func TestExporter_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testutil.FakeLibrary)
		file  *media.MediaFile
	}{
		{
			name:  "save failure",
			setup: func(l *testutil.FakeLibrary) { l.SaveErr = errors.New("quota") },
			file:  &media.MediaFile{Type: media.TypeImage, LocalPath: "/docs/a.jpg"},
		},
		{
			name:  "asset failure",
			setup: func(l *testutil.FakeLibrary) { l.AssetErr = errors.New("quota") },
			file:  &media.MediaFile{Type: media.TypeAudio, LocalPath: "/docs/a.m4a"},
		},
		{
			name:  "album failure",
			setup: func(l *testutil.FakeLibrary) { l.AlbumErr = errors.New("album locked") },
			file:  &media.MediaFile{Type: media.TypeAudio, LocalPath: "/docs/a.m4a"},
		},
		{
			name: "no local copy",
			file: &media.MediaFile{Type: media.TypeImage, RemoteURL: "https://cdn/a.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := testutil.NewFakeLibrary(media.LibraryCapabilities{})
			if tt.setup != nil {
				tt.setup(lib)
			}
			exp := media.NewExporter(testutil.GrantAll(), lib, "", media.NewNopLogger())
			if err := exp.Export(context.Background(), tt.file); err == nil {
				t.Error("Export() expected error")
			}
		})
	}
}

func TestExporter_RemoteOnlyRecord(t *testing.T) {
	lib := testutil.NewFakeLibrary(media.LibraryCapabilities{})
	exp := media.NewExporter(testutil.GrantAll(), lib, "", media.NewNopLogger())
	f := &media.MediaFile{Name: "a.jpg", Type: media.TypeImage, RemoteURL: "https://cdn/a.jpg", IsUploaded: true}

	err := exp.Export(context.Background(), f)
	if !errors.Is(err, media.ErrNoLocalCopy) {
		t.Errorf("Export() error = %v, want ErrNoLocalCopy", err)
	}
}

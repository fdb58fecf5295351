package library

import (
	"context"
	"path/filepath"
	"testing"

	"mediakit/internal/media"
	"mediakit/internal/testutil"
)

func newTestLibrary(platform Platform) (*DirectoryLibrary, *testutil.MemFilesystem) {
	fsys := testutil.NewMemFilesystem()
	fsys.AddFile("/docs/audio/note.m4a", []byte("voice"))
	fsys.AddFile("/docs/images/a.jpg", []byte("jpeg"))
	return NewDirectoryLibrary("/library", platform, fsys, testutil.NewStubIDGenerator(), media.NewNopLogger()), fsys
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "ios", want: PlatformIOS},
		{in: "Android", want: PlatformAndroid},
		{in: "symbian", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlatform(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePlatform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDirectoryLibrary_Capabilities(t *testing.T) {
	ios, _ := newTestLibrary(PlatformIOS)
	if !ios.Capabilities().DirectAudioSave {
		t.Error("ios library should save audio directly")
	}
	android, _ := newTestLibrary(PlatformAndroid)
	if android.Capabilities().DirectAudioSave {
		t.Error("android library should not save audio directly")
	}
}

func TestDirectoryLibrary_SaveToLibrary(t *testing.T) {
	lib, fsys := newTestLibrary(PlatformIOS)

	if err := lib.SaveToLibrary(context.Background(), "/docs/images/a.jpg"); err != nil {
		t.Fatalf("SaveToLibrary() error = %v", err)
	}
	if got, ok := fsys.ReadFile("/library/DCIM/a.jpg"); !ok || string(got) != "jpeg" {
		t.Errorf("library copy = %q, %v", got, ok)
	}

	if err := lib.SaveToLibrary(context.Background(), "/docs/missing.jpg"); err == nil {
		t.Error("SaveToLibrary() expected error for missing file")
	}
}

func TestDirectoryLibrary_AssetAndAlbum(t *testing.T) {
	lib, fsys := newTestLibrary(PlatformAndroid)
	ctx := context.Background()

	asset, err := lib.CreateAsset(ctx, "/docs/audio/note.m4a")
	if err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}
	if asset.ID != "id-1" || asset.URI != "/library/assets/id-1/note.m4a" {
		t.Errorf("CreateAsset() = %+v", asset)
	}

	if err := lib.AddToAlbum(ctx, "Audio", asset); err != nil {
		t.Fatalf("AddToAlbum() error = %v", err)
	}
	want := filepath.Join(lib.AlbumPath("Audio"), "id-1_note.m4a")
	if got, ok := fsys.ReadFile(want); !ok || string(got) != "voice" {
		t.Errorf("album copy at %s = %q, %v", want, got, ok)
	}
}

func TestDirectoryLibrary_AddToAlbumInvalid(t *testing.T) {
	lib, _ := newTestLibrary(PlatformAndroid)
	ctx := context.Background()
	asset := &media.Asset{ID: "a", URI: "/docs/audio/note.m4a"}

	for _, album := range []string{"", "  ", "../etc", "a/b", ".."} {
		if err := lib.AddToAlbum(ctx, album, asset); err == nil {
			t.Errorf("AddToAlbum(%q) expected error", album)
		}
	}
	if err := lib.AddToAlbum(ctx, "Audio", &media.Asset{ID: "x"}); err == nil {
		t.Error("AddToAlbum() expected error for asset without uri")
	}
}

func TestDirectoryLibrary_WithExporter(t *testing.T) {
	tests := []struct {
		platform Platform
		wantPath string
	}{
		{platform: PlatformIOS, wantPath: "/library/DCIM/note.m4a"},
		{platform: PlatformAndroid, wantPath: "/library/albums/Voice/id-1_note.m4a"},
	}
	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			lib, fsys := newTestLibrary(tt.platform)
			exp := media.NewExporter(testutil.GrantAll(), lib, "Voice", media.NewNopLogger())

			f := &media.MediaFile{ID: "m", Type: media.TypeAudio, LocalPath: "/docs/audio/note.m4a"}
			if err := exp.Export(context.Background(), f); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if _, ok := fsys.ReadFile(tt.wantPath); !ok {
				t.Errorf("expected library file at %s", tt.wantPath)
			}
		})
	}
}

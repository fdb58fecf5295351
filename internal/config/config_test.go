package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		DeviceID:    "device-abc",
		BaseDir:     "/home/user/.local/share/mediakit",
		DocumentDir: "/home/user/.local/share/mediakit/documents",
		LogDir:      "/home/user/.local/share/mediakit/log",
		Store: StoreConfig{
			Type:        "s3",
			S3Bucket:    "support-media",
			S3Region:    "eu-west-1",
			S3Endpoint:  "http://localhost:9000",
			S3PublicURL: "http://localhost:9000/support-media",
		},
		Registry:    RegistryConfig{Type: "sqlite", DataDir: "/home/user/.local/share/mediakit/db"},
		Library:     LibraryConfig{Platform: "ios", Root: "/media/library"},
		Permissions: PermissionsConfig{Microphone: "grant", LibraryWrite: "deny"},
		Encryption:  EncryptionConfig{Type: "age", PassphraseEnv: "MEDIAKIT_PASSPHRASE"},
		Capture:     CaptureConfig{SampleRate: 8000},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.DeviceID != original.DeviceID {
		t.Errorf("DeviceID = %q, want %q", got.DeviceID, original.DeviceID)
	}
	if got.DocumentDir != original.DocumentDir {
		t.Errorf("DocumentDir = %q, want %q", got.DocumentDir, original.DocumentDir)
	}
	if got.Store.Type != "s3" {
		t.Errorf("Store.Type = %q, want %q", got.Store.Type, "s3")
	}
	if got.Store.S3Endpoint != original.Store.S3Endpoint {
		t.Errorf("Store.S3Endpoint = %q, want %q", got.Store.S3Endpoint, original.Store.S3Endpoint)
	}
	if got.Library.Platform != "ios" {
		t.Errorf("Library.Platform = %q, want %q", got.Library.Platform, "ios")
	}
	if got.Permissions.LibraryWrite != "deny" {
		t.Errorf("Permissions.LibraryWrite = %q, want %q", got.Permissions.LibraryWrite, "deny")
	}
	if got.Encryption.PassphraseEnv != "MEDIAKIT_PASSPHRASE" {
		t.Errorf("Encryption.PassphraseEnv = %q, want %q", got.Encryption.PassphraseEnv, "MEDIAKIT_PASSPHRASE")
	}
	if got.Capture.SampleRate != 8000 {
		t.Errorf("Capture.SampleRate = %d, want %d", got.Capture.SampleRate, 8000)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("device-1", "/data/mk")

	if cfg.DeviceID != "device-1" {
		t.Errorf("DeviceID = %q, want %q", cfg.DeviceID, "device-1")
	}
	if cfg.DocumentDir != "/data/mk/documents" {
		t.Errorf("DocumentDir = %q, want %q", cfg.DocumentDir, "/data/mk/documents")
	}
	if cfg.LogDir != "/data/mk/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/mk/log")
	}
	if cfg.Store.Type != "filesystem" || cfg.Store.FSRoot != "/data/mk/remote" {
		t.Errorf("Store = %+v, want filesystem store at /data/mk/remote", cfg.Store)
	}
	if cfg.Registry.Type != "sqlite" {
		t.Errorf("Registry.Type = %q, want %q", cfg.Registry.Type, "sqlite")
	}
	if cfg.Permissions.Microphone != "prompt" {
		t.Errorf("Permissions.Microphone = %q, want %q", cfg.Permissions.Microphone, "prompt")
	}
	if cfg.Capture.SampleRate != 16000 {
		t.Errorf("Capture.SampleRate = %d, want %d", cfg.Capture.SampleRate, 16000)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediakit.toml")
		cfg := NewConfig("d1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediakit.toml")
		cfg := NewConfig("d1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediakit.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Registry = RegistryConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.DeviceID != "read-test" {
			t.Errorf("DeviceID = %q, want %q", got.DeviceID, "read-test")
		}
		if got.Registry.Type != "memory" {
			t.Errorf("Registry.Type = %q, want %q", got.Registry.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/mediakit.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

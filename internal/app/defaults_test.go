package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("MEDIAKIT_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("MEDIAKIT_HOME", "/custom/mediakit")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		want := map[string]string{
			"config_path":  "/custom/config.toml",
			"base_dir":     "/custom/mediakit",
			"document_dir": "/custom/mediakit/documents",
			"log_dir":      "/custom/mediakit/log",
		}
		for k, v := range want {
			if defaults[k] != v {
				t.Errorf("%s = %q, want %q", k, defaults[k], v)
			}
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("MEDIAKIT_CONFIG_PATH", "")
		t.Setenv("MEDIAKIT_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "mediakit.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "mediakit")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}
		if defaults["log_dir"] != filepath.Join(wantBase, "log") {
			t.Errorf("log_dir = %q", defaults["log_dir"])
		}
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "MEDIAKIT_TEST_HOME=/from/dotenv\nMEDIAKIT_TEST_KEPT=from-dotenv\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MEDIAKIT_TEST_HOME", "")
	os.Unsetenv("MEDIAKIT_TEST_HOME")
	t.Setenv("MEDIAKIT_TEST_KEPT", "from-env")

	if err := LoadEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("MEDIAKIT_TEST_HOME"); got != "/from/dotenv" {
		t.Errorf("MEDIAKIT_TEST_HOME = %q, want %q", got, "/from/dotenv")
	}
	if got := os.Getenv("MEDIAKIT_TEST_KEPT"); got != "from-env" {
		t.Errorf("MEDIAKIT_TEST_KEPT = %q, want existing value kept", got)
	}
}

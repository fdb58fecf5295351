package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for mediakit.
type Config struct {
	DeviceID    string            `toml:"device_id"`
	BaseDir     string            `toml:"base_dir"`
	DocumentDir string            `toml:"document_dir"`
	LogDir      string            `toml:"log_dir"`
	Store       StoreConfig       `toml:"store"`
	Registry    RegistryConfig    `toml:"registry"`
	Library     LibraryConfig     `toml:"library"`
	Permissions PermissionsConfig `toml:"permissions"`
	Encryption  EncryptionConfig  `toml:"encryption"`
	Capture     CaptureConfig     `toml:"capture"`
}

// StoreConfig represents configuration for the remote store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "s3", "minio" or "http"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`   // custom endpoint for S3-compatible stores
	S3PublicURL string `toml:"s3_public_url,omitempty"` // base of returned object URLs
	S3AccessKey string `toml:"s3_access_key,omitempty"` // static credentials; default chain when empty
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// MinIO-specific fields (only used when Type == "minio")
	MinioEndpoint  string `toml:"minio_endpoint,omitempty"` // host:port
	MinioBucket    string `toml:"minio_bucket,omitempty"`
	MinioPrefix    string `toml:"minio_prefix,omitempty"`
	MinioAccessKey string `toml:"minio_access_key,omitempty"`
	MinioSecretKey string `toml:"minio_secret_key,omitempty"`
	MinioUseSSL    bool   `toml:"minio_use_ssl,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// HTTP-specific fields (only used when Type == "http")
	HTTPBaseURL string `toml:"http_base_url,omitempty"`
}

// RegistryConfig represents configuration for the local media registry.
type RegistryConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// LibraryConfig represents configuration for the device media library.
type LibraryConfig struct {
	Platform string `toml:"platform"` // "ios" or "android"
	Root     string `toml:"root"`
	Album    string `toml:"album,omitempty"` // album for audio on platforms without direct audio saves
}

// PermissionsConfig sets the answer for each OS permission: "grant", "deny" or "prompt".
type PermissionsConfig struct {
	Microphone   string `toml:"microphone"`
	LibraryWrite string `toml:"library_write"`
}

// EncryptionConfig controls sealing of uploaded objects.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default) or "age"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"` // encrypted with the passphrase
	PassphraseEnv  string `toml:"passphrase_env,omitempty"`   // env var holding the passphrase
}

// CaptureConfig controls the simulated native recorder.
type CaptureConfig struct {
	SampleRate int `toml:"sample_rate"` // 16-bit mono PCM samples per second
}

// NewConfig creates a new Config with the provided values and local defaults.
func NewConfig(deviceID, baseDir string) *Config {
	return &Config{
		DeviceID:    deviceID,
		BaseDir:     baseDir,
		DocumentDir: filepath.Join(baseDir, "documents"),
		LogDir:      filepath.Join(baseDir, "log"),
		Store: StoreConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "remote"),
		},
		Registry: RegistryConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Library: LibraryConfig{
			Platform: "android",
			Root:     filepath.Join(baseDir, "library"),
			Album:    "Audio",
		},
		Permissions: PermissionsConfig{
			Microphone:   "prompt",
			LibraryWrite: "prompt",
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "mediakit.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "mediakit.key"),
			PassphraseEnv:  "MEDIAKIT_PASSPHRASE",
		},
		Capture: CaptureConfig{SampleRate: 16000},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

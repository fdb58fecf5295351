package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"mediakit/internal/config"
	"mediakit/internal/media"
)

// NewRegistryFromConfig creates a Registry implementation based on the registry config type.
func NewRegistryFromConfig(cfg config.RegistryConfig, deviceID string, clock media.Clock) (media.Registry, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite registry")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating registry directory: %w", err)
		}
		r, err := NewSQLiteRegistry(filepath.Join(cfg.DataDir, deviceID+".db"), clock)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "memory":
		return NewMemoryRegistry(clock), nil
	default:
		return nil, fmt.Errorf("unknown registry type: %s", cfg.Type)
	}
}

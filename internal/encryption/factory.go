package encryption

import (
	"fmt"

	"mediakit/internal/config"
	"mediakit/internal/media"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
// It returns nil for "none": uploads are stored as-is.
func NewSealerFromConfig(cfg config.EncryptionConfig) (media.Sealer, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("public_key_path and private_key_path required for age encryption")
		}
		return NewAgeSealer(cfg, EnvPassphrase(cfg.PassphraseEnv)), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

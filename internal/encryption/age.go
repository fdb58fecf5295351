package encryption

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"

	"mediakit/internal/config"
	"mediakit/internal/media"
)

// ageHeader is the first line of every age file.
var ageHeader = []byte("age-encryption.org/v1")

// PassphraseFunc supplies the passphrase that protects the private key.
type PassphraseFunc func() (string, error)

// AgeSealer implements media.Sealer using filippo.io/age with X25519 keys.
// The public key is stored in plaintext so uploads never need the passphrase;
// the private key is encrypted with age's scrypt-based passphrase encryption
// and unlocked on the first sealed download.
type AgeSealer struct {
	publicKeyPath  string
	privateKeyPath string
	passphrase     PassphraseFunc

	mu       sync.Mutex
	identity age.Identity
}

// Compile-time check that AgeSealer implements media.Sealer interface
var _ media.Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates a new AgeSealer from configuration.
func NewAgeSealer(cfg config.EncryptionConfig, passphrase PassphraseFunc) *AgeSealer {
	return &AgeSealer{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
		passphrase:     passphrase,
	}
}

// Setup generates a new X25519 key pair, stores the public key in plaintext,
// and encrypts the private key with the passphrase.
func (s *AgeSealer) Setup(passphrase string) error {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.publicKeyPath), 0700); err != nil {
		return fmt.Errorf("creating public key directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.privateKeyPath), 0700); err != nil {
		return fmt.Errorf("creating private key directory: %w", err)
	}

	if err := os.WriteFile(s.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	privFile, err := os.OpenFile(s.privateKeyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating private key file: %w", err)
	}
	defer privFile.Close()

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	w, err := age.Encrypt(privFile, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return fmt.Errorf("writing encrypted private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encrypted private key: %w", err)
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
	return nil
}

// IsConfigured returns true if both key files exist.
func (s *AgeSealer) IsConfigured() bool {
	if _, err := os.Stat(s.publicKeyPath); err != nil {
		return false
	}
	if _, err := os.Stat(s.privateKeyPath); err != nil {
		return false
	}
	return true
}

// Seal returns a writer that encrypts everything written to it into w
// using the stored public key. Close must be called to flush the last chunk.
func (s *AgeSealer) Seal(w io.Writer) (io.WriteCloser, error) {
	recipient, err := s.loadRecipient()
	if err != nil {
		return nil, fmt.Errorf("loading public key: %w", err)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	return encWriter, nil
}

// Unseal returns the plaintext of r. Content without the age header passes
// through untouched and reports false, so objects uploaded before sealing was
// enabled still download.
func (s *AgeSealer) Unseal(r io.Reader) (io.Reader, bool, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(ageHeader))
	if err != nil && err != io.EOF {
		return nil, false, fmt.Errorf("reading content header: %w", err)
	}
	if !bytes.Equal(head, ageHeader) {
		return br, false, nil
	}

	identity, err := s.unlock()
	if err != nil {
		return nil, false, err
	}

	decReader, err := age.Decrypt(br, identity)
	if err != nil {
		return nil, false, fmt.Errorf("creating decrypted reader: %w", err)
	}
	return decReader, true, nil
}

// Unlock decrypts the private key using the passphrase and caches the
// identity for later downloads.
func (s *AgeSealer) Unlock(passphrase string) error {
	privData, err := os.ReadFile(s.privateKeyPath)
	if err != nil {
		return fmt.Errorf("reading private key file: %w", err)
	}

	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	decReader, err := age.Decrypt(bytes.NewReader(privData), scrypt)
	if err != nil {
		return fmt.Errorf("decrypting private key: %w", err)
	}

	identities, err := age.ParseIdentities(decReader)
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return fmt.Errorf("no identities found in private key")
	}

	s.mu.Lock()
	s.identity = identities[0]
	s.mu.Unlock()
	return nil
}

func (s *AgeSealer) unlock() (age.Identity, error) {
	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()
	if identity != nil {
		return identity, nil
	}

	if s.passphrase == nil {
		return nil, fmt.Errorf("sealed content but no passphrase source configured")
	}
	passphrase, err := s.passphrase()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	if err := s.Unlock(passphrase); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, nil
}

// loadRecipient reads the public key from disk and parses it.
func (s *AgeSealer) loadRecipient() (age.Recipient, error) {
	pubData, err := os.ReadFile(s.publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}

	recipients, err := age.ParseRecipients(bytes.NewReader(pubData))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in public key file")
	}
	return recipients[0], nil
}

package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "aiwriter"

var (
	// ErrAPIKeyNotFound is returned when no key is stored or configured for a provider.
	ErrAPIKeyNotFound = errors.New("api key not found")
	// ErrNoKeyring is returned by writes when no OS keychain could be opened.
	ErrNoKeyring = errors.New("no keyring available")
)

// KeyringService stores provider API keys in the OS keychain. Keys found in
// the environment (AIWRITER_<PROVIDER>_API_KEY or <PROVIDER>_API_KEY) take
// precedence so headless deployments need no keychain.
type KeyringService struct {
	ring   keyring.Keyring
	getenv func(string) string
}

// NewKeyringService opens the default OS keyring.
func NewKeyringService(backends ...keyring.BackendType) (*KeyringService, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:     serviceName,
		AllowedBackends: backends,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return NewKeyringServiceWith(ring), nil
}

// NewKeyringServiceFromConfig opens a keyring with an explicit configuration,
// e.g. the file backend on machines without a keychain.
func NewKeyringServiceFromConfig(cfg keyring.Config) (*KeyringService, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return NewKeyringServiceWith(ring), nil
}

// NewKeyringServiceWith wraps an already opened keyring. A nil ring serves
// keys from the environment only.
func NewKeyringServiceWith(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring, getenv: os.Getenv}
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	provider = normalizeProvider(provider)
	if provider == "" {
		return errors.New("provider is required")
	}
	if s.ring == nil {
		return ErrNoKeyring
	}
	return s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by aiwriter",
	})
}

func (s *KeyringService) GetApiKey(provider string) (string, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		return "", errors.New("provider is required")
	}
	if key := s.envKey(provider); key != "" {
		return key, nil
	}
	if s.ring == nil {
		return "", fmt.Errorf("%s: %w", provider, ErrAPIKeyNotFound)
	}
	item, err := s.ring.Get(provider)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("%s: %w", provider, ErrAPIKeyNotFound)
		}
		return "", err
	}
	return string(item.Data), nil
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	provider = normalizeProvider(provider)
	if provider == "" {
		return errors.New("provider is required")
	}
	if s.ring == nil {
		return ErrNoKeyring
	}
	if err := s.ring.Remove(provider); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", provider, ErrAPIKeyNotFound)
		}
		return err
	}
	return nil
}

// ListApiKeys returns the providers with a key in the keychain.
func (s *KeyringService) ListApiKeys() ([]string, error) {
	if s.ring == nil {
		return nil, nil
	}
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *KeyringService) envKey(provider string) string {
	if s.getenv == nil {
		return ""
	}
	name := strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"
	if v := strings.TrimSpace(s.getenv("AIWRITER_" + name)); v != "" {
		return v
	}
	return strings.TrimSpace(s.getenv(name))
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

package unit_tests

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"

	"aiwriter/internal/services"
	"aiwriter/internal/tests/utils"
)

func TestKeyringService_StoreGetDelete(t *testing.T) {
	t.Setenv("AIWRITER_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	svc := services.NewKeyringServiceWith(keyring.NewArrayKeyring(nil))

	utils.NilError(t, svc.StoreApiKey(" OpenAI ", []byte("sk-test")))
	key, err := svc.GetApiKey("openai")
	utils.NilError(t, err)
	utils.Equal(t, key, "sk-test")

	list, err := svc.ListApiKeys()
	utils.NilError(t, err)
	utils.Equal(t, list, []string{"openai"})

	utils.NilError(t, svc.DeleteApiKey("openai"))
	_, err = svc.GetApiKey("openai")
	utils.ErrorIs(t, err, services.ErrAPIKeyNotFound)
}

func TestKeyringService_EnvironmentWins(t *testing.T) {
	svc := services.NewKeyringServiceWith(keyring.NewArrayKeyring([]keyring.Item{
		{Key: "anthropic", Data: []byte("from-keychain")},
	}))

	t.Setenv("AIWRITER_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "plain")
	key, err := svc.GetApiKey("anthropic")
	utils.NilError(t, err)
	utils.Equal(t, key, "plain")

	t.Setenv("AIWRITER_ANTHROPIC_API_KEY", " prefixed ")
	key, err = svc.GetApiKey("anthropic")
	utils.NilError(t, err)
	utils.Equal(t, key, "prefixed")
}

func TestKeyringService_WithoutKeyring(t *testing.T) {
	t.Setenv("AIWRITER_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	svc := services.NewKeyringServiceWith(nil)

	utils.ErrorIs(t, svc.StoreApiKey("gemini", []byte("k")), services.ErrNoKeyring)
	utils.ErrorIs(t, svc.DeleteApiKey("gemini"), services.ErrNoKeyring)
	_, err := svc.GetApiKey("gemini")
	utils.ErrorIs(t, err, services.ErrAPIKeyNotFound)

	list, err := svc.ListApiKeys()
	utils.NilError(t, err)
	assert.Empty(t, list)

	t.Setenv("GEMINI_API_KEY", "g-key")
	key, err := svc.GetApiKey("gemini")
	utils.NilError(t, err)
	utils.Equal(t, key, "g-key")
}

func TestKeyringService_Validation(t *testing.T) {
	svc := services.NewKeyringServiceWith(keyring.NewArrayKeyring(nil))
	assert.EqualError(t, svc.StoreApiKey("openai", nil), "API key is empty")
	assert.EqualError(t, svc.StoreApiKey(" ", []byte("k")), "provider is required")
	_, err := svc.GetApiKey("")
	assert.EqualError(t, err, "provider is required")
}

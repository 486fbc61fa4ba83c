package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"aiwriter/internal/models"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, 2*time.Minute, cfg.WriteTimeout)
	assert.Equal(t, uint(12), cfg.Writer.TrackerID)
	assert.Equal(t, models.DefaultSystemPrompt, cfg.Writer.SystemPrompt)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
log_level: debug
write_timeout: 45s
base_urls:
  openai: http://localhost:4000/v1
writer:
  tracker_id: 3
  prompt_custom_field_id: 7
  model_key: mock|echo
`), 0o600))
	t.Chdir(dir)
	t.Setenv("AIWRITER_WRITER_TRACKER_ID", "5")
	t.Setenv("AIWRITER_CSRF_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, 45*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "http://localhost:4000/v1", cfg.BaseURLs["openai"])
	assert.Equal(t, uint(5), cfg.Writer.TrackerID)
	assert.Equal(t, uint(7), cfg.Writer.PromptCustomFieldID)
	assert.Equal(t, "s3cret", cfg.CSRFSecret)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, logger.Info, cfg.GormLogLevel())

	st := cfg.Settings()
	assert.Equal(t, uint(5), st.TrackerID)
	assert.Equal(t, "mock|echo", st.ModelKey)
	assert.Equal(t, models.DefaultSystemPrompt, st.SystemPrompt)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AIWRITER_LOG_LEVEL", "loud")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "nested", FileName)

	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false))
	require.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want.Listen, cfg.Listen)
	assert.Equal(t, want.WriteTimeout, cfg.WriteTimeout)
	assert.Equal(t, want.Writer, cfg.Writer)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.DataDir = "/tmp/jobtrack"
	cfg.Fetch.TimeoutSeconds = 5
	return cfg
}

func TestNormalizeAndValidateAcceptsDefaults(t *testing.T) {
	_, res := NormalizeAndValidate(validConfig())
	assert.True(t, res.OK(), "errors: %v", res.Errors)
}

func TestValidateRejectsBadPortAndProxy(t *testing.T) {
	cfg := validConfig()
	cfg.App.Port = 0
	cfg.Fetch.Proxies = []string{"https://proxy.example/raw"} // no %s

	_, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	assert.Len(t, res.Errors, 2)
}

func TestValidateEmailRequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Email.Enabled = true

	_, res := NormalizeAndValidate(cfg)
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Errors)
}

func TestNormalizeDedupesSubjects(t *testing.T) {
	cfg := validConfig()
	cfg.Email.SearchSubjectAny = []string{" interview ", "Interview", "", "offer"}

	out, _ := NormalizeAndValidate(cfg)
	assert.Equal(t, []string{"interview", "offer"}, out.Email.SearchSubjectAny)
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := validConfig()
	cfg.Fetch.Proxies = []string{"https://proxy.example/raw?url=%s"}
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.App.Port, got.App.Port)
	assert.Equal(t, cfg.Fetch.Proxies, got.Fetch.Proxies)

	// second save keeps a .bak of the previous file
	require.NoError(t, SaveAtomic(path, cfg))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	cfg := validConfig()
	cfg.App.Port = -1
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.Error(t, err)
}

func TestEnsureUserConfigCopiesDefault(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(def, []byte("app:\n  port: 38471\n"), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	userPath, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)

	cfg, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, 38471, cfg.App.Port)

	// second call returns the existing copy untouched
	again, err := EnsureUserConfig(dataDir, "does-not-exist.yml")
	require.NoError(t, err)
	assert.Equal(t, userPath, again)
}

func TestOverlayProxies(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "proxies.yml")
	require.NoError(t, os.WriteFile(overlay,
		[]byte("fetch:\n  proxies:\n    - \"https://alt.example/?%s\"\n"), 0o644))

	cfg := validConfig()
	require.NoError(t, OverlayProxies(&cfg, overlay))
	assert.Equal(t, []string{"https://alt.example/?%s"}, cfg.Fetch.Proxies)

	// missing overlay file is not an error
	require.NoError(t, OverlayProxies(&cfg, filepath.Join(dir, "nope.yml")))
}

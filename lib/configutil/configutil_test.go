package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Url      string   `json:"url"`
	Codes    []string `json:"codes"`
	Selector string   `json:"selector"`
}

func TestReadConfigNotFound(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "request.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "request.json5")
	err := os.WriteFile(name, []byte(`{
		// comments are allowed
		"url": "https://example.org/",
		"codes": ["100", "101"],
		"selector": ".abstract",
	}`), 0644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://example.org/", config.Url)
	require.Equal(t, []string{"100", "101"}, config.Codes)
	require.Equal(t, ".abstract", config.Selector)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "request.json5"), []byte(`{
		"url": "https://example.org/",
		"selector": ".abstract",
	}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "request.local.json5"), []byte(`{
		"url": "http://localhost:8080/",
	}`), 0644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "request.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/", config.Url)
	require.Equal(t, ".abstract", config.Selector)
}

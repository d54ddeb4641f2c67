package lactoserv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := writeTempConfig(t, "cfg.toml", "title = \"example\"\nport = 8080\n")
	raw, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "example", raw["title"])
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeTempConfig(t, "cfg.yaml", "title: example\nport: 8080\n")
	raw, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "example", raw["title"])
}

func TestLoadConfigFileJSON(t *testing.T) {
	path := writeTempConfig(t, "cfg.json", `{"title":"example","port":8080}`)
	raw, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "example", raw["title"])
}

func TestLoadConfigFileUnrecognizedExtension(t *testing.T) {
	path := writeTempConfig(t, "cfg.ini", "title=example")
	_, err := LoadConfigFile(path)
	assert.ErrorIs(t, err, ErrConfiguration)
}

type testEndpointRecord struct {
	Protocol string `mapstructure:"protocol"`
	Port     int    `mapstructure:"port"`
}

func TestDecodeSection(t *testing.T) {
	section := map[string]any{"protocol": "http", "port": 8080}
	var out testEndpointRecord
	require.NoError(t, decode(section, &out))
	assert.Equal(t, "http", out.Protocol)
	assert.Equal(t, 8080, out.Port)
}

func TestClassRegistry(t *testing.T) {
	r := NewClassRegistry()
	r.Register("serial", func(record ClassedRecord, apps *ApplicationManager) (Application, error) {
		return &stubApp{name: record.Name}, nil
	})

	app, err := r.Build(ClassedRecord{Class: "serial", Name: "top"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "top", app.Name())

	_, err = r.Build(ClassedRecord{Class: "bogus"}, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port    string        `env:"TEST_SERVER_PORT" default:"3000"`
		Timeout time.Duration `env:"TEST_SERVER_TIMEOUT" default:"5s"`
	}
	Hub struct {
		SendBuffer int     `env:"TEST_HUB_SEND_BUFFER" default:"64"`
		Radius     float64 `env:"TEST_HUB_RADIUS" default:"5"`
		Enabled    bool    `env:"TEST_HUB_ENABLED" default:"true"`
	}
	NoDefault string `env:"TEST_NO_DEFAULT"`
}

func TestParseEnv_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	require.Equal(t, "3000", cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Server.Timeout)
	require.Equal(t, 64, cfg.Hub.SendBuffer)
	require.InDelta(t, 5.0, cfg.Hub.Radius, 1e-9)
	require.True(t, cfg.Hub.Enabled)
	require.Empty(t, cfg.NoDefault)
}

func TestParseEnv_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TEST_SERVER_PORT", "8080")
	t.Setenv("TEST_HUB_ENABLED", "false")

	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	require.Equal(t, "8080", cfg.Server.Port)
	require.False(t, cfg.Hub.Enabled)
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("TEST_HUB_SEND_BUFFER", "lots")

	var cfg testConfig
	require.Error(t, ParseEnv(&cfg))
}

func TestParseEnv_RejectsNonPointer(t *testing.T) {
	require.ErrorIs(t, ParseEnv(testConfig{}), ErrNotStructPointer)
}

func TestLoadYamlFile_NestedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `# demo
test:
  server:
    port: "9090"
  hub:
    send_buffer: ${TEST_UNSET_BUFFER_VAR:-128}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("TEST_SERVER_PORT", "")
	t.Setenv("TEST_HUB_SEND_BUFFER", "")

	var cfg testConfig
	require.NoError(t, LoadAndParseYaml(path, &cfg))

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 128, cfg.Hub.SendBuffer)
}

func TestLoadAndParseYaml_MissingFileUsesDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, LoadAndParseYaml(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
	require.Equal(t, "3000", cfg.Server.Port)
}

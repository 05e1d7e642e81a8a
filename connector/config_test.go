package connector

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLBuilder(t *testing.T) {
	got := NewURLBuilder("https").
		Host("broker.local", 8443).
		Path("query/sql").
		Param("queryOptions", "timeoutMs=10").
		Param("empty", "").
		Build()
	assert.Equal(t, "https://broker.local:8443/query/sql?queryOptions=timeoutMs%3D10", got)

	assert.Equal(t, "http://h:1", NewURLBuilder("http").Host("h", 1).Build())
}

func TestURLBuilderValidate(t *testing.T) {
	tests := []struct {
		name    string
		builder *URLBuilder
		wantErr string
	}{
		{"Valid", NewURLBuilder("http").Host("localhost", 8099), ""},
		{"BadScheme", NewURLBuilder("ftp").Host("localhost", 8099), "invalid scheme"},
		{"NoHost", NewURLBuilder("http").Host("", 8099), "host is required"},
		{"HostWithPath", NewURLBuilder("http").Host("a/b", 8099), "invalid host"},
		{"PortTooLarge", NewURLBuilder("http").Host("localhost", 70000), "invalid port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Host: "h", QueryPath: "sql"}.withDefaults()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultScheme, cfg.Scheme)
	assert.Equal(t, "/sql", cfg.QueryPath)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 100, cfg.Client.MaxConnsPerHost)
	assert.Equal(t, 20, cfg.Client.MaxIdleConns)
	assert.Equal(t, 20, cfg.Client.MaxRedirects)

	def := DefaultConfig()
	assert.Equal(t, "localhost", def.Host)
	assert.True(t, def.Client.TrustEnv)
	assert.False(t, def.Client.FollowRedirects)
	assert.NoError(t, def.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinot.yaml")
	content := `
host: broker.internal
port: 9000
database: analytics
query_path: /query/sql
client:
  timeout: 30s
  follow_redirects: true
  headers:
    x-team: data
query_options:
  timeout_ms: 1500
  use_multi_stage_engine: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, "broker.internal", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "http", cfg.Scheme)
	assert.Equal(t, "analytics", cfg.Database)
	assert.Equal(t, "/query/sql", cfg.QueryPath)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.True(t, cfg.Client.FollowRedirects)
	assert.Equal(t, 100, cfg.Client.MaxConnsPerHost)
	assert.Equal(t, "data", cfg.Client.Headers["x-team"])
	require.NotNil(t, cfg.QueryOptions.TimeoutMs)
	assert.Equal(t, 1500, *cfg.QueryOptions.TimeoutMs)
	require.NotNil(t, cfg.QueryOptions.UseMultiStageEngine)
	assert.True(t, *cfg.QueryOptions.UseMultiStageEngine)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PINOTTEST_HOST", "env-host")
	t.Setenv("PINOTTEST_PORT", "8000")
	t.Setenv("PINOTTEST_CLIENT_TIMEOUT", "2s")
	t.Setenv("PINOTTEST_ALLOW_PARTIAL_RESULTS", "true")

	cfg, err := LoadConfig("", "PINOTTEST")
	require.NoError(t, err)
	assert.Equal(t, "env-host", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.True(t, cfg.AllowPartialResults)
	assert.Equal(t, DefaultQueryPath, cfg.QueryPath)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestRedirectPolicy(t *testing.T) {
	noFollow := redirectPolicy(ClientOptions{})
	assert.Error(t, noFollow(nil, nil))

	follow := redirectPolicy(ClientOptions{FollowRedirects: true, MaxRedirects: 2})
	assert.NoError(t, follow(nil, make([]*http.Request, 1)))
	assert.Error(t, follow(nil, make([]*http.Request, 2)))
}

func TestNewHTTPClient(t *testing.T) {
	client, err := newHTTPClient(ClientOptions{Timeout: time.Second, Proxy: "http://proxy:3128", InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.Equal(t, time.Second, client.Timeout)

	_, err = newHTTPClient(ClientOptions{Proxy: "://bad"})
	assert.Error(t, err)
}

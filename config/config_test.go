package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	var path = filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.ini"), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadLayers(t *testing.T) {

	var iniPath = writeFile(t, "blogr.ini", `
listen = 0.0.0.0:9000
session_lifetime = 2h
cookie_secure = true
cors_origins = https://a.example, https://b.example
log_level = debug
`)
	var envPath = writeFile(t, ".env", "BLOGR_SECRET=from-dotenv\nBLOGR_LOG_LEVEL=warn\n")

	t.Cleanup(func() { os.Unsetenv("BLOGR_SECRET") }) // set by godotenv
	t.Setenv("BLOGR_LISTEN", ":7000")
	t.Setenv("BLOGR_LOG_LEVEL", "error") // wins over the dotenv file

	c, err := Load(iniPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, ":7000", c.Listen)
	assert.Equal(t, "from-dotenv", c.Secret)
	assert.Equal(t, "error", c.LogLevel)
	assert.Equal(t, 2*time.Hour, c.SessionLifetime)
	assert.True(t, c.CookieSecure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, Default().DB, c.DB)
}

func TestLoadErrors(t *testing.T) {

	t.Run("unknown ini key", func(t *testing.T) {
		_, err := Load(writeFile(t, "blogr.ini", "colour = blue\n"), "")
		assert.ErrorContains(t, err, "unknown key")
	})

	t.Run("bad duration in environment", func(t *testing.T) {
		t.Setenv("BLOGR_SESSION_IDLE_TIMEOUT", "soon")
		_, err := Load("", "")
		assert.ErrorContains(t, err, "session_idle_timeout")
	})
}

func TestBasePath(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"/":      "",
		"blog":   "/blog",
		"/blog/": "/blog",
		"a/b/":   "/a/b",
	}
	for input, want := range tests {
		assert.Equal(t, want, Config{Base: input}.BasePath(), input)
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/mjcatalog/internal/auth"
	"github.com/mvaleed/mjcatalog/internal/config"
)

func testConfig() (*config.Config, error) {
	return &config.Config{
		JWTSecretKey:   "test-secret-key-at-least-32-bytes!!",
		AccessTokenTTL: time.Hour,
		APIClientID:    "catalog-admin",
		LogFormat:      "text",
		Environment:    "dev",
	}, nil
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(testConfig)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestHashSecret(t *testing.T) {
	secret := "0123456789abcdef-secret"

	out, _, err := execute(t, "", "hash-secret", secret)
	require.NoError(t, err)
	hash := strings.TrimSpace(strings.TrimPrefix(out, "hash: "))
	assert.NoError(t, auth.CheckSecret(secret, hash))

	out, _, err = execute(t, secret+"\n", "hash-secret")
	require.NoError(t, err)
	hash = strings.TrimSpace(strings.TrimPrefix(out, "hash: "))
	assert.NoError(t, auth.CheckSecret(secret, hash))

	_, _, err = execute(t, "", "hash-secret", "short")
	assert.ErrorContains(t, err, "at least 16")
}

func TestHashSecretGenerate(t *testing.T) {
	out, _, err := execute(t, "", "hash-secret", "--generate")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	secret := strings.TrimPrefix(lines[0], "secret: ")
	hash := strings.TrimPrefix(lines[1], "hash: ")
	assert.NoError(t, auth.CheckSecret(secret, hash))
}

func TestToken(t *testing.T) {
	out, stderr, err := execute(t, "", "token", "--scope", auth.ScopeCatalogRead)
	require.NoError(t, err)
	assert.Contains(t, stderr, "expires")

	cfg, _ := testConfig()
	jwtCfg := auth.DefaultJWTConfig()
	jwtCfg.SecretKey = cfg.JWTSecretKey
	claims, err := auth.NewJWTManager(jwtCfg).ValidateAccessToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "catalog-admin", claims.ClientID)
	assert.Equal(t, []string{auth.ScopeCatalogRead}, claims.Scopes)

	_, _, err = execute(t, "", "token", "--scope", "admin:everything")
	assert.ErrorContains(t, err, "unknown scope")
}

func TestSeedDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
versions:
  - version: "6"
    parameter: "--v 6"
styles:
  - name: Bauhaus
    type: Abstract
    tags: [geometric]
  - name: ""
    type: Abstract
`), 0o600))

	out, _, err := execute(t, "", "seed", "--dry-run", path)
	require.Error(t, err)
	assert.Contains(t, out, "versions   created=1 skipped=0 failed=0")
	assert.Contains(t, out, "styles     created=1 skipped=0 failed=1")
}

func TestSeedMissingFile(t *testing.T) {
	_, _, err := execute(t, "", "seed", "--dry-run", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open seed file")
}

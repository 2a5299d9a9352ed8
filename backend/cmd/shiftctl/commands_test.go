package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcare/backend/config"
	"shiftcare/backend/pkg/jwt"
)

const testSecret = "shiftctl-test-secret-value"

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "auth:\n  jwt_secret: \"" + testSecret + "\"\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "--config", path, "token", "--staff", "staff-1", "--org", "org-1", "--role", "admin")
	require.NoError(t, err)

	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: testSecret, Issuer: "shiftcare"})
	claims, err := mgr.ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenCommand_Validation(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "--config", path, "token", "--staff", "staff-1", "--org", "org-1", "--role", "root")
	assert.ErrorContains(t, err, "unknown role")

	_, err = run(t, "--config", path, "token", "--org", "org-1")
	assert.Error(t, err)
}

func TestMissingConfigSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o600))

	_, err := run(t, "--config", path, "token", "--staff", "s", "--org", "o")
	assert.Error(t, err)
}

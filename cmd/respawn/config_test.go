package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runConfigCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newConfigCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respawn.yaml")

	out, err := runConfigCmd(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = runConfigCmd(t, "init", path)
	assert.Error(t, err, "existing file is not overwritten")

	_, err = runConfigCmd(t, "init", "--force", path)
	require.NoError(t, err)

	out, err = runConfigCmd(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid: 2 pools, 2 groups")
	assert.NotContains(t, out, "not built into this binary")
}

func TestConfigValidateMissingFile(t *testing.T) {
	_, err := runConfigCmd(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/microblog/internal/database"
)

func TestInitDBCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("MICROBLOG_SETTINGS", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"initdb", "--db", path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	conn, err := database.NewConnector(path).Open(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	entries, err := conn.ListEntries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	cmd = newRootCmd()
	cmd.SetArgs([]string{"optimize", "--db", path, "--vacuum"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("MICROBLOG_SETTINGS", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "env.db"))
	t.Setenv("PORT", "8000")
	flagDB := filepath.Join(t.TempDir(), "flag.db")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--db", flagDB}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, flagDB, cfg.DatabasePath)
	assert.Equal(t, 8000, cfg.Port)
}

func TestLoadConfig_InvalidBind(t *testing.T) {
	t.Setenv("MICROBLOG_SETTINGS", "")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--bind", "not-an-ip", "--db", filepath.Join(t.TempDir(), "x.db")}))

	_, err := loadConfig(cmd)
	assert.Error(t, err)
}

package logging

import (
	"path/filepath"
	"testing"

	"github.com/morikuni/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePathForDB(t *testing.T) {
	assert.Equal(t, DefaultLogFilePath, FilePathForDB(""))

	dir := t.TempDir()
	got := FilePathForDB(filepath.Join(dir, "blog.db"))
	assert.Equal(t, filepath.Join(dir, DefaultLogFilePath), got)
}

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, "warn", LevelForVerbosity(0, "warn"))
	assert.Equal(t, "debug", LevelForVerbosity(1, "warn"))
	assert.Equal(t, "trace", LevelForVerbosity(3, "info"))
}

func TestErrorStackMarshaller(t *testing.T) {
	err := failure.New(failure.StringCode("Boom"))

	frames, ok := errorStackMarshaller(err).([]string)
	require.True(t, ok)
	require.NotEmpty(t, frames)
	assert.Contains(t, frames[0], "TestErrorStackMarshaller")

	assert.Nil(t, errorStackMarshaller(assert.AnError))
}

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, key string) {
	prev, ok := os.LookupEnv(key)
	require.Nil(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestInitLoggerReadsLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	InitLogger()
	defer InitLogger()
	assert.Equal(t, logrus.WarnLevel, Log.Logger.GetLevel())
}

func TestInitLoggerFromEnvFiles(t *testing.T) {
	unsetEnv(t, "LOG_LEVEL")
	unsetEnv(t, "ROST_ENV")

	dir := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	cwd, err := os.Getwd()
	require.Nil(t, err)
	require.Nil(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(cwd)
		os.Unsetenv("LOG_LEVEL")
		InitLogger()
	})

	InitLogger()
	assert.Equal(t, logrus.InfoLevel, Log.Logger.GetLevel())

	require.Nil(t, InitLoggerFromEnvFiles())
	assert.Equal(t, logrus.DebugLevel, Log.Logger.GetLevel())
}

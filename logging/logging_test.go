package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_FileOutputAndJSON(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "reactforge.log")

	InitLogger(LoggingConfig{Level: "debug", Format: "json", Output: path})
	logrus.WithField("session", "abc").Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session":"abc"`)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestInitLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	InitLogger(LoggingConfig{Level: "loud", Output: "stderr"})
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

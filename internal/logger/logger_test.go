package logger

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { _ = Setup("info", "text") })

	t.Run("Success: Levels", func(t *testing.T) {
		cases := map[string]log.Level{
			"debug":   log.DebugLevel,
			"":        log.InfoLevel,
			"INFO":    log.InfoLevel,
			"warn":    log.WarnLevel,
			"warning": log.WarnLevel,
			"error":   log.ErrorLevel,
		}
		for level, want := range cases {
			assert.NoError(t, Setup(level, "text"), level)
			assert.Equal(t, want, log.GetLevel(), level)
		}
	})

	t.Run("Success: JSON Formatter", func(t *testing.T) {
		assert.NoError(t, Setup("info", "json"))
		_, ok := log.StandardLogger().Formatter.(*log.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("Fail: Unknown Level Or Format", func(t *testing.T) {
		assert.Error(t, Setup("verbose", "text"))
		assert.Error(t, Setup("info", "xml"))
	})
}

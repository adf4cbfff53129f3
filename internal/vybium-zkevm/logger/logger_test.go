package logger

import (
	"testing"
	"time"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func TestLogger_NewLogger(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		log := NewLogger("DEBUG", "testModule")
		assert.NotNil(t, log)
		assert.True(t, log.IsEnabledFor(logging.DEBUG))
	})

	t.Run("case insensitive", func(t *testing.T) {
		log := NewLogger("warning", "testWarning")
		assert.True(t, log.IsEnabledFor(logging.WARNING))
		assert.False(t, log.IsEnabledFor(logging.INFO))
	})

	t.Run("invalid log level", func(t *testing.T) {
		log := NewLogger("INVALID", "testInvalid")
		assert.NotNil(t, log)
		assert.True(t, log.IsEnabledFor(logging.INFO))
		assert.False(t, log.IsEnabledFor(logging.DEBUG))
	})

	t.Run("modules keep their own level", func(t *testing.T) {
		quiet := NewLogger("ERROR", "testQuiet")
		verbose := NewLogger("DEBUG", "testVerbose")
		assert.False(t, quiet.IsEnabledFor(logging.WARNING))
		assert.True(t, quiet.IsEnabledFor(logging.ERROR))
		assert.True(t, verbose.IsEnabledFor(logging.DEBUG))
	})
}

func TestLogger_ParseTime(t *testing.T) {
	hours, minutes, seconds := ParseTime(3661 * time.Second)

	assert.Equal(t, uint32(1), hours)
	assert.Equal(t, uint32(1), minutes)
	assert.Equal(t, uint32(1), seconds)
}

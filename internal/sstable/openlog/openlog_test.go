package openlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_ValidLevel(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("not-a-level")
	assert.Error(t, err)
}

func TestNopIfNil(t *testing.T) {
	assert.NotNil(t, NopIfNil(nil))

	real := zap.NewNop()
	assert.Same(t, real, NopIfNil(real))
}

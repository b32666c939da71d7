package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	prod, err := New("prod")
	require.NoError(t, err)
	require.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	require.True(t, prod.Core().Enabled(zapcore.InfoLevel))

	dev, err := New("dev")
	require.NoError(t, err)
	require.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	nop, err := New("test")
	require.NoError(t, err)
	require.False(t, nop.Core().Enabled(zapcore.ErrorLevel))
}

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		level   zapcore.Level
		wantErr bool
	}{
		{name: "production info", opts: Options{Level: "info"}, level: zapcore.InfoLevel},
		{name: "pretty debug", opts: Options{Level: "debug", Pretty: true}, level: zapcore.DebugLevel},
		{name: "bad level", opts: Options{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewZapLogger(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			assert.False(t, logger.Core().Enabled(tt.level-1))
		})
	}
}

func TestNew(t *testing.T) {
	logger, zapLogger, err := New(Options{Level: "warn", AppName: "fern", Version: "test"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NotNil(t, zapLogger)
	assert.NotNil(t, Nop())
}

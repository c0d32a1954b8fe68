package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/yectos/projects-api/internal/config"
	"github.com/yectos/projects-api/internal/logger"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logging  config.LoggingConfig
		app      config.AppConfig
		expected zapcore.Level
	}{
		{"development console debug", config.LoggingConfig{Level: "debug", Format: "console"}, config.AppConfig{Name: "test", Environment: "development"}, zapcore.DebugLevel},
		{"production json", config.LoggingConfig{Level: "warn", Format: "json"}, config.AppConfig{Name: "test", Environment: "production"}, zapcore.WarnLevel},
		{"invalid level falls back to info", config.LoggingConfig{Level: "loud"}, config.AppConfig{Name: "test"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.NewLogger(&tt.logging, &tt.app)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.expected-1))
			}
		})
	}
}

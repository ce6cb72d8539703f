package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level    string
		encoding string
		wantErr  string
	}{
		{level: "info", encoding: "json"},
		{level: "debug", encoding: "console"},
		{level: "warn", encoding: ""},
		{level: "loud", encoding: "json", wantErr: "invalid log level"},
		{level: "info", encoding: "xml", wantErr: "unknown log encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.encoding, func(t *testing.T) {
			log, err := New(tt.level, tt.encoding)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
		})
	}
}

func TestFromContext(t *testing.T) {
	baseCore, baseLogs := observer.New(zapcore.InfoLevel)
	scopedCore, scopedLogs := observer.New(zapcore.InfoLevel)
	base := &Logger{zap.New(baseCore)}
	scoped := &Logger{zap.New(scopedCore)}

	base.InfoContext(context.Background(), "plain")
	base.InfoContext(NewContext(context.Background(), scoped), "scoped")
	assert.Equal(t, 1, baseLogs.Len())
	require.Equal(t, 1, scopedLogs.Len())
	assert.Equal(t, "scoped", scopedLogs.All()[0].Message)
}

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"equityscan/config"
	"equityscan/pkg/common"
)

func TestWithAlertsWrapsCore(t *testing.T) {
	log, err := New("info", "console")
	require.NoError(t, err)

	wrapped := log.WithAlerts(&config.Config{})

	_, ok := wrapped.Logger.Core().(*AlertCore)
	assert.True(t, ok)
}

func TestErrorContextWithAlertFlagsEntry(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{zap.New(core)}

	log.ErrorContextWithAlert(context.Background(), "pipeline stalled",
		StringField("stage", "FETCH"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, true, fields[common.KEY_LOG_HOOK_SEND_ALERT])
	assert.Equal(t, "FETCH", fields["stage"])
}

func TestAlertCorePassesEntriesThrough(t *testing.T) {
	inner, logs := observer.New(zapcore.InfoLevel)
	wrapped := zap.New(NewAlertCore(&config.Config{}, inner, zapcore.ErrorLevel))

	wrapped.Info("routine message")
	wrapped.Error("plain error without flag")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "routine message", entries[0].Message)
	assert.Equal(t, "plain error without flag", entries[1].Message)
}

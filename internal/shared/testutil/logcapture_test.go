package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCaptureRecordsLevelsAndAttrs(t *testing.T) {
	capture := NewLogCapture()
	logger := capture.Logger()

	logger.Info("dataset loaded", slog.Int("rows", 42))
	logger.Warn("mapping skipped", slog.String("specialty", "Unknown"))

	require.Len(t, capture.Records(), 2)
	assert.True(t, capture.Has(slog.LevelInfo, "dataset loaded"))
	assert.True(t, capture.Has(slog.LevelWarn, "mapping skipped"))
	assert.False(t, capture.Has(slog.LevelError, "mapping skipped"))

	rows, ok := capture.Attr("dataset loaded", "rows")
	require.True(t, ok)
	assert.Equal(t, int64(42), rows)
}

func TestLogCaptureWithAttrsSharesRecords(t *testing.T) {
	capture := NewLogCapture()
	logger := capture.Logger().With(slog.String("component", "benchmark"))

	logger.Error("load failed")

	require.Len(t, capture.Records(), 1)
	component, ok := capture.Attr("load failed", "component")
	require.True(t, ok)
	assert.Equal(t, "benchmark", component)
}

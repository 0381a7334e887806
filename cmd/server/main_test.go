package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExitCode(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	assert.Equal(t, 0, exitCode(logger, nil))
	assert.Zero(t, logs.Len())

	assert.Equal(t, 1, exitCode(logger, errors.New("listen tcp :8080: address already in use")))
	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "server exited", entries[0].Message)
}

// Package testutil provides testing utilities for treeconf
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/quantfoundry/treeconf/pkg/logger"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// ObservedLogs swaps the global logger for an in-memory observer and
// restores the previous logger when the test finishes. It returns the
// captured log store for assertions on diagnostic output.
func ObservedLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	prev := logger.Get()
	logger.Set(zap.New(core))
	t.Cleanup(func() {
		logger.Set(prev)
	})
	return logs
}

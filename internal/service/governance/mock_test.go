package governance

import (
	"errors"
	"io"
	"log/slog"

	"nosql-catalog/internal/testutil"
)

// errTest is a sentinel error for test scenarios.
var errTest = errors.New("test error")

func boolPtr(b bool) *bool { return &b }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Type aliases for convenience; keeps test code short.
type mockRelationRepo = testutil.MockRelationRepo
type mockAuditRepo = testutil.MockAuditRepo

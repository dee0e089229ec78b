package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"nosql-catalog/internal/domain"
	"nosql-catalog/internal/testutil"
)

// errTest is a sentinel error for test scenarios.
var errTest = errors.New("test error")

func ctxWithPrincipal(name string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{Name: name})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Type aliases for convenience; keeps test code short.
type mockColumnRepo = testutil.MockColumnRepo
type mockTableDescriptionRepo = testutil.MockTableDescriptionRepo
type mockTableDumpRepo = testutil.MockTableDumpRepo

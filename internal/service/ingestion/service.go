// Package ingestion imports column metadata from CSV files into the catalog.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"nosql-catalog/internal/domain"
)

// archiveTimeLayout names archived uploads. The fractional separator is
// rewritten to '_', e.g. 2024-05-01_13-04-05_123456.csv.
const archiveTimeLayout = "2006-01-02_15-04-05.000000"

// Service parses CSV uploads and hands them to the Reconciler.
type Service struct {
	reconciler *Reconciler
	uploadDir  string
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a Service. Uploads are archived under uploadDir; an
// empty uploadDir disables archival.
func NewService(reconciler *Reconciler, uploadDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reconciler: reconciler,
		uploadDir:  uploadDir,
		logger:     logger,
		now:        time.Now,
	}
}

// ImportUpload validates the uploaded filename, archives the content and
// reconciles it on behalf of actor.
func (s *Service) ImportUpload(ctx context.Context, actor, filename string, src io.Reader) (*domain.ImportSummary, error) {
	if filename == "" {
		return nil, domain.ErrValidation("No file selected for uploading")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, domain.ErrValidation("Only CSV files are allowed")
	}

	if s.uploadDir == "" {
		return s.Import(ctx, actor, src)
	}

	path, err := s.archive(src)
	if err != nil {
		return nil, err
	}
	s.logger.Info("upload archived", "filename", filename, "path", path, "actor", actor)
	return s.ImportFile(ctx, actor, path)
}

// ImportFile reconciles the CSV file at path.
func (s *Service) ImportFile(ctx context.Context, actor, path string) (*domain.ImportSummary, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from config or the archive directory
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return s.Import(ctx, actor, f)
}

// Import parses CSV content from r and reconciles it.
func (s *Service) Import(ctx context.Context, actor string, r io.Reader) (*domain.ImportSummary, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.reconciler.Reconcile(ctx, actor, rows)
}

// archive copies src into the upload directory under a timestamped name.
// A name already taken gets a random suffix.
func (s *Service) archive(src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	base := strings.Replace(s.now().Format(archiveTimeLayout), ".", "_", 1)
	path := filepath.Join(s.uploadDir, base+".csv")

	dst, err := createExclusive(path)
	if errors.Is(err, os.ErrExist) {
		path = filepath.Join(s.uploadDir, base+"_"+uuid.NewString()[:8]+".csv")
		dst, err = createExclusive(path)
	}
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write archive file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close archive file: %w", err)
	}
	return path, nil
}

func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) //nolint:gosec // name is generated
}

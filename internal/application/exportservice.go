package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// ExportService writes the labeled feature store as a training dataset.
type ExportService struct {
	reader driven.FeatureReader
	writer driven.DatasetWriter
}

// NewExportService creates an ExportService.
func NewExportService(reader driven.FeatureReader, writer driven.DatasetWriter) *ExportService {
	return &ExportService{reader: reader, writer: writer}
}

// Export writes every labeled row to outputPath and returns the row count.
func (s *ExportService) Export(ctx context.Context, outputPath string) (int, error) {
	rows, err := s.reader.ListLabeled(ctx)
	if err != nil {
		return 0, fmt.Errorf("read labeled rows: %w", err)
	}

	n, err := s.writer.Write(ctx, rows, outputPath)
	if err != nil {
		return 0, fmt.Errorf("write dataset: %w", err)
	}

	slog.Info("dataset exported", "path", outputPath, "rows", n)
	return n, nil
}

// ExportDay writes every row collected on day, labeled or not, so the
// current day's placeholder rows can be scored before their label exists.
func (s *ExportService) ExportDay(ctx context.Context, day time.Time, outputPath string) (int, error) {
	rows, err := s.reader.ListByDate(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("read rows for %s: %w", model.FormatDay(day), err)
	}

	n, err := s.writer.Write(ctx, rows, outputPath)
	if err != nil {
		return 0, fmt.Errorf("write dataset: %w", err)
	}

	slog.Info("day exported", "day", model.FormatDay(day), "path", outputPath, "rows", n)
	return n, nil
}

// Package parquet exports feature rows as a Parquet training dataset using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DatasetWriter = (*Writer)(nil)

// FeatureRecord is the on-disk layout of one feature row. Column names match
// the feature store columns.
type FeatureRecord struct {
	RepoName        string    `parquet:"repo_name,snappy,dict"`
	CollectionDate  time.Time `parquet:"collection_date,snappy"`
	Language        string    `parquet:"language,snappy,dict"`
	StarsTotal      int64     `parquet:"stars_total,snappy"`
	ForksTotal      int64     `parquet:"forks_total,snappy"`
	StarVelocity    int64     `parquet:"star_velocity,snappy"`
	CommitFrequency int64     `parquet:"commit_frequency,snappy"`
	HNBuzzScore     float64   `parquet:"hn_buzz_score,snappy"`
	DaysOld         int64     `parquet:"days_old,snappy"`
	ForkRate        float64   `parquet:"fork_rate,snappy"`
	PopularityScore float64   `parquet:"popularity_score,snappy"`
	StarsPerDay     float64   `parquet:"stars_per_day,snappy"`

	// IsTrending is -1 for rows whose window has not closed yet.
	IsTrending int32 `parquet:"is_trending,snappy"`
}

// ToRecord converts a domain row.
func ToRecord(r model.FeatureRow) FeatureRecord {
	return FeatureRecord{
		RepoName:        r.RepoName,
		CollectionDate:  model.Day(r.CollectionDate),
		Language:        r.Language,
		StarsTotal:      int64(r.StarsTotal),
		ForksTotal:      int64(r.ForksTotal),
		StarVelocity:    int64(r.StarVelocity),
		CommitFrequency: int64(r.CommitFrequency),
		HNBuzzScore:     r.HNBuzzScore,
		DaysOld:         int64(r.DaysOld),
		ForkRate:        r.ForkRate,
		PopularityScore: r.PopularityScore,
		StarsPerDay:     r.StarsPerDay,
		IsTrending:      int32(r.IsTrending),
	}
}

// Writer writes datasets to local Parquet files.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write creates outputPath, including missing parent directories, and
// writes rows to it. An empty rows slice still produces a valid file.
func (w *Writer) Write(ctx context.Context, rows []model.FeatureRow, outputPath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	records := make([]FeatureRecord, len(rows))
	for i, r := range rows {
		records[i] = ToRecord(r)
	}

	writer := parquet.NewGenericWriter[FeatureRecord](file)
	n, err := writer.Write(records)
	if err != nil {
		_ = writer.Close()
		return 0, fmt.Errorf("write records: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("finish parquet file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return 0, fmt.Errorf("sync output file: %w", err)
	}

	return n, nil
}

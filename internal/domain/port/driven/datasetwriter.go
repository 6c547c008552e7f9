package driven

import (
	"context"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// DatasetWriter exports labeled rows as a training dataset file.
type DatasetWriter interface {
	Write(ctx context.Context, rows []model.FeatureRow, outputPath string) (int, error)
}

package db

import (
	"context"

	"github.com/opst/knitlabel/pkg/domain"
)

type StatisticsInterface interface {
	// Recompute replaces accuracy statistics of the source with ones calculated from current label associations.
	//
	// Records in statistics exclusions of the source are not counted.
	Recompute(ctx context.Context, projectId string, sourceId string) ([]domain.SourceStatistics, error)
}

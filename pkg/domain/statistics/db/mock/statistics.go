package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/domain"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	kstatistics "github.com/opst/knitlabel/pkg/domain/statistics/db"
)

type StatisticsInterface struct {
	Impl struct {
		Recompute func(ctx context.Context, projectId string, sourceId string) ([]domain.SourceStatistics, error)
	}

	Calls struct {
		Recompute dbmock.CallLog[struct {
			ProjectId string
			SourceId  string
		}]
	}
}

var _ kstatistics.StatisticsInterface = &StatisticsInterface{}

func NewStatisticsInterface() *StatisticsInterface {
	return &StatisticsInterface{}
}

func (m *StatisticsInterface) Recompute(ctx context.Context, projectId string, sourceId string) ([]domain.SourceStatistics, error) {
	m.Calls.Recompute = append(m.Calls.Recompute, struct {
		ProjectId string
		SourceId  string
	}{ProjectId: projectId, SourceId: sourceId})
	if m.Impl.Recompute != nil {
		return m.Impl.Recompute(ctx, projectId, sourceId)
	}
	panic(errors.New("it should not be called"))
}

package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/domain"
	"github.com/opst/knitlabel/pkg/payload/scheduler"
)

type CreatePayloadArgs struct {
	ProjectId    string
	SourceId     string
	UserId       string
	Asynchronous bool
}

type TrainAllModelsArgs struct {
	ProjectId    string
	UserId       string
	Asynchronous bool
}

type Scheduler struct {
	Impl struct {
		CreatePayload  func(ctx context.Context, projectId string, sourceId string, userId string, asynchronous bool) (domain.Payload, error)
		TrainAllModels func(ctx context.Context, projectId string, userId string, asynchronous bool) ([]domain.Payload, error)
	}
	Calls struct {
		CreatePayload  []CreatePayloadArgs
		TrainAllModels []TrainAllModelsArgs
	}
}

var _ scheduler.Scheduler = &Scheduler{}

func New() *Scheduler {
	return &Scheduler{}
}

func (m *Scheduler) CreatePayload(
	ctx context.Context, projectId string, sourceId string, userId string, asynchronous bool,
) (domain.Payload, error) {
	m.Calls.CreatePayload = append(m.Calls.CreatePayload, CreatePayloadArgs{
		ProjectId: projectId, SourceId: sourceId, UserId: userId, Asynchronous: asynchronous,
	})
	if m.Impl.CreatePayload != nil {
		return m.Impl.CreatePayload(ctx, projectId, sourceId, userId, asynchronous)
	}
	panic(errors.New("it should not be called"))
}

func (m *Scheduler) TrainAllModels(
	ctx context.Context, projectId string, userId string, asynchronous bool,
) ([]domain.Payload, error) {
	m.Calls.TrainAllModels = append(m.Calls.TrainAllModels, TrainAllModelsArgs{
		ProjectId: projectId, UserId: userId, Asynchronous: asynchronous,
	})
	if m.Impl.TrainAllModels != nil {
		return m.Impl.TrainAllModels(ctx, projectId, userId, asynchronous)
	}
	panic(errors.New("it should not be called"))
}

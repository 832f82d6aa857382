package mock

import (
	"context"
	"errors"
	"time"

	"github.com/opst/knitlabel/pkg/domain"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	kpayload "github.com/opst/knitlabel/pkg/domain/payload/db"
)

type PayloadInterface struct {
	Impl struct {
		Count      func(ctx context.Context, projectId string, sourceId string) (int, error)
		New        func(ctx context.Context, spec domain.PayloadSpec) (domain.Payload, error)
		Get        func(ctx context.Context, projectId string, payloadId string) (domain.Payload, error)
		SetStarted func(ctx context.Context, payloadId string, at time.Time) error
		SetLogs    func(ctx context.Context, payloadId string, logs []string, finishedAt *time.Time) error
		Transit    func(ctx context.Context, payloadId string, newState domain.PayloadState) error
	}

	Calls struct {
		Count dbmock.CallLog[struct {
			ProjectId string
			SourceId  string
		}]
		New dbmock.CallLog[domain.PayloadSpec]
		Get dbmock.CallLog[struct {
			ProjectId string
			PayloadId string
		}]
		SetStarted dbmock.CallLog[struct {
			PayloadId string
			At        time.Time
		}]
		SetLogs dbmock.CallLog[struct {
			PayloadId  string
			Logs       []string
			FinishedAt *time.Time
		}]
		Transit dbmock.CallLog[struct {
			PayloadId string
			NewState  domain.PayloadState
		}]
	}
}

var _ kpayload.PayloadInterface = &PayloadInterface{}

func NewPayloadInterface() *PayloadInterface {
	return &PayloadInterface{}
}

func (m *PayloadInterface) Count(ctx context.Context, projectId string, sourceId string) (int, error) {
	m.Calls.Count = append(m.Calls.Count, struct {
		ProjectId string
		SourceId  string
	}{ProjectId: projectId, SourceId: sourceId})
	if m.Impl.Count != nil {
		return m.Impl.Count(ctx, projectId, sourceId)
	}
	panic(errors.New("it should not be called"))
}

func (m *PayloadInterface) New(ctx context.Context, spec domain.PayloadSpec) (domain.Payload, error) {
	m.Calls.New = append(m.Calls.New, spec)
	if m.Impl.New != nil {
		return m.Impl.New(ctx, spec)
	}
	panic(errors.New("it should not be called"))
}

func (m *PayloadInterface) Get(ctx context.Context, projectId string, payloadId string) (domain.Payload, error) {
	m.Calls.Get = append(m.Calls.Get, struct {
		ProjectId string
		PayloadId string
	}{ProjectId: projectId, PayloadId: payloadId})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, projectId, payloadId)
	}
	panic(errors.New("it should not be called"))
}

func (m *PayloadInterface) SetStarted(ctx context.Context, payloadId string, at time.Time) error {
	m.Calls.SetStarted = append(m.Calls.SetStarted, struct {
		PayloadId string
		At        time.Time
	}{PayloadId: payloadId, At: at})
	if m.Impl.SetStarted != nil {
		return m.Impl.SetStarted(ctx, payloadId, at)
	}
	panic(errors.New("it should not be called"))
}

func (m *PayloadInterface) SetLogs(ctx context.Context, payloadId string, logs []string, finishedAt *time.Time) error {
	m.Calls.SetLogs = append(m.Calls.SetLogs, struct {
		PayloadId  string
		Logs       []string
		FinishedAt *time.Time
	}{PayloadId: payloadId, Logs: logs, FinishedAt: finishedAt})
	if m.Impl.SetLogs != nil {
		return m.Impl.SetLogs(ctx, payloadId, logs, finishedAt)
	}
	panic(errors.New("it should not be called"))
}

func (m *PayloadInterface) Transit(ctx context.Context, payloadId string, newState domain.PayloadState) error {
	m.Calls.Transit = append(m.Calls.Transit, struct {
		PayloadId string
		NewState  domain.PayloadState
	}{PayloadId: payloadId, NewState: newState})
	if m.Impl.Transit != nil {
		return m.Impl.Transit(ctx, payloadId, newState)
	}
	panic(errors.New("it should not be called"))
}

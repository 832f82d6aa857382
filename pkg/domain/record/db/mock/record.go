package mock

import (
	"context"
	"errors"

	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	krecord "github.com/opst/knitlabel/pkg/domain/record/db"
)

type RecordInterface struct {
	Impl struct {
		Existing func(ctx context.Context, projectId string, recordIds []string) (map[string]struct{}, error)
		MaxToken func(ctx context.Context, projectId string, taskId string, recordIds []string) (map[string]int, error)
	}

	Calls struct {
		Existing dbmock.CallLog[struct {
			ProjectId string
			RecordIds []string
		}]
		MaxToken dbmock.CallLog[struct {
			ProjectId string
			TaskId    string
			RecordIds []string
		}]
	}
}

var _ krecord.RecordInterface = &RecordInterface{}

func NewRecordInterface() *RecordInterface {
	return &RecordInterface{}
}

func (m *RecordInterface) Existing(ctx context.Context, projectId string, recordIds []string) (map[string]struct{}, error) {
	m.Calls.Existing = append(m.Calls.Existing, struct {
		ProjectId string
		RecordIds []string
	}{ProjectId: projectId, RecordIds: recordIds})
	if m.Impl.Existing != nil {
		return m.Impl.Existing(ctx, projectId, recordIds)
	}
	panic(errors.New("it should not be called"))
}

func (m *RecordInterface) MaxToken(ctx context.Context, projectId string, taskId string, recordIds []string) (map[string]int, error) {
	m.Calls.MaxToken = append(m.Calls.MaxToken, struct {
		ProjectId string
		TaskId    string
		RecordIds []string
	}{ProjectId: projectId, TaskId: taskId, RecordIds: recordIds})
	if m.Impl.MaxToken != nil {
		return m.Impl.MaxToken(ctx, projectId, taskId, recordIds)
	}
	panic(errors.New("it should not be called"))
}

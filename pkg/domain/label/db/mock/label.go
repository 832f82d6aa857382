package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/domain"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	klabel "github.com/opst/knitlabel/pkg/domain/label/db"
)

type LabelInterface struct {
	Impl struct {
		InTask               func(ctx context.Context, projectId string, taskId string) (map[string]string, error)
		ReplaceBySource      func(ctx context.Context, projectId string, sourceId string, associations []domain.LabelAssociation) (int, error)
		ManualRecords        func(ctx context.Context, projectId string, taskId string) ([]string, error)
		ManualClassification func(ctx context.Context, projectId string, taskId string) (map[string]string, error)
		ManualExtraction     func(ctx context.Context, projectId string, taskId string) (map[string][]domain.ManualSpan, error)
	}

	Calls struct {
		InTask          dbmock.CallLog[ProjectTask]
		ReplaceBySource dbmock.CallLog[struct {
			ProjectId    string
			SourceId     string
			Associations []domain.LabelAssociation
		}]
		ManualRecords        dbmock.CallLog[ProjectTask]
		ManualClassification dbmock.CallLog[ProjectTask]
		ManualExtraction     dbmock.CallLog[ProjectTask]
	}
}

type ProjectTask struct {
	ProjectId string
	TaskId    string
}

var _ klabel.LabelInterface = &LabelInterface{}

func NewLabelInterface() *LabelInterface {
	return &LabelInterface{}
}

func (m *LabelInterface) InTask(ctx context.Context, projectId string, taskId string) (map[string]string, error) {
	m.Calls.InTask = append(m.Calls.InTask, ProjectTask{ProjectId: projectId, TaskId: taskId})
	if m.Impl.InTask != nil {
		return m.Impl.InTask(ctx, projectId, taskId)
	}
	panic(errors.New("it should not be called"))
}

func (m *LabelInterface) ReplaceBySource(ctx context.Context, projectId string, sourceId string, associations []domain.LabelAssociation) (int, error) {
	m.Calls.ReplaceBySource = append(m.Calls.ReplaceBySource, struct {
		ProjectId    string
		SourceId     string
		Associations []domain.LabelAssociation
	}{ProjectId: projectId, SourceId: sourceId, Associations: associations})
	if m.Impl.ReplaceBySource != nil {
		return m.Impl.ReplaceBySource(ctx, projectId, sourceId, associations)
	}
	panic(errors.New("it should not be called"))
}

func (m *LabelInterface) ManualRecords(ctx context.Context, projectId string, taskId string) ([]string, error) {
	m.Calls.ManualRecords = append(m.Calls.ManualRecords, ProjectTask{ProjectId: projectId, TaskId: taskId})
	if m.Impl.ManualRecords != nil {
		return m.Impl.ManualRecords(ctx, projectId, taskId)
	}
	panic(errors.New("it should not be called"))
}

func (m *LabelInterface) ManualClassification(ctx context.Context, projectId string, taskId string) (map[string]string, error) {
	m.Calls.ManualClassification = append(m.Calls.ManualClassification, ProjectTask{ProjectId: projectId, TaskId: taskId})
	if m.Impl.ManualClassification != nil {
		return m.Impl.ManualClassification(ctx, projectId, taskId)
	}
	panic(errors.New("it should not be called"))
}

func (m *LabelInterface) ManualExtraction(ctx context.Context, projectId string, taskId string) (map[string][]domain.ManualSpan, error) {
	m.Calls.ManualExtraction = append(m.Calls.ManualExtraction, ProjectTask{ProjectId: projectId, TaskId: taskId})
	if m.Impl.ManualExtraction != nil {
		return m.Impl.ManualExtraction(ctx, projectId, taskId)
	}
	panic(errors.New("it should not be called"))
}

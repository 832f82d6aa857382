package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/domain"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	kproject "github.com/opst/knitlabel/pkg/domain/project/db"
)

type ProjectInterface struct {
	Impl struct {
		Get                  func(ctx context.Context, projectId string) (domain.Project, error)
		Task                 func(ctx context.Context, projectId string, taskId string) (domain.LabelingTask, error)
		TokenizationProgress func(ctx context.Context, projectId string) (float64, error)
		KnowledgeBase        func(ctx context.Context, projectId string) (domain.KnowledgeBase, error)
	}

	Calls struct {
		Get  dbmock.CallLog[string]
		Task dbmock.CallLog[struct {
			ProjectId string
			TaskId    string
		}]
		TokenizationProgress dbmock.CallLog[string]
		KnowledgeBase        dbmock.CallLog[string]
	}
}

var _ kproject.ProjectInterface = &ProjectInterface{}

func NewProjectInterface() *ProjectInterface {
	return &ProjectInterface{}
}

func (m *ProjectInterface) Get(ctx context.Context, projectId string) (domain.Project, error) {
	m.Calls.Get = append(m.Calls.Get, projectId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, projectId)
	}
	panic(errors.New("it should not be called"))
}

func (m *ProjectInterface) Task(ctx context.Context, projectId string, taskId string) (domain.LabelingTask, error) {
	m.Calls.Task = append(m.Calls.Task, struct {
		ProjectId string
		TaskId    string
	}{ProjectId: projectId, TaskId: taskId})
	if m.Impl.Task != nil {
		return m.Impl.Task(ctx, projectId, taskId)
	}
	panic(errors.New("it should not be called"))
}

func (m *ProjectInterface) TokenizationProgress(ctx context.Context, projectId string) (float64, error) {
	m.Calls.TokenizationProgress = append(m.Calls.TokenizationProgress, projectId)
	if m.Impl.TokenizationProgress != nil {
		return m.Impl.TokenizationProgress(ctx, projectId)
	}
	panic(errors.New("it should not be called"))
}

func (m *ProjectInterface) KnowledgeBase(ctx context.Context, projectId string) (domain.KnowledgeBase, error) {
	m.Calls.KnowledgeBase = append(m.Calls.KnowledgeBase, projectId)
	if m.Impl.KnowledgeBase != nil {
		return m.Impl.KnowledgeBase(ctx, projectId)
	}
	panic(errors.New("it should not be called"))
}

package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/domain"
	kembedding "github.com/opst/knitlabel/pkg/domain/embedding/db"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
)

type EmbeddingInterface struct {
	Impl struct {
		ByName    func(ctx context.Context, projectId string, name string) (domain.Embedding, error)
		RecordIds func(ctx context.Context, projectId string) ([]string, error)
	}

	Calls struct {
		ByName dbmock.CallLog[struct {
			ProjectId string
			Name      string
		}]
		RecordIds dbmock.CallLog[string]
	}
}

var _ kembedding.EmbeddingInterface = &EmbeddingInterface{}

func NewEmbeddingInterface() *EmbeddingInterface {
	return &EmbeddingInterface{}
}

func (m *EmbeddingInterface) ByName(ctx context.Context, projectId string, name string) (domain.Embedding, error) {
	m.Calls.ByName = append(m.Calls.ByName, struct {
		ProjectId string
		Name      string
	}{ProjectId: projectId, Name: name})
	if m.Impl.ByName != nil {
		return m.Impl.ByName(ctx, projectId, name)
	}
	panic(errors.New("it should not be called"))
}

func (m *EmbeddingInterface) RecordIds(ctx context.Context, projectId string) ([]string, error) {
	m.Calls.RecordIds = append(m.Calls.RecordIds, projectId)
	if m.Impl.RecordIds != nil {
		return m.Impl.RecordIds(ctx, projectId)
	}
	panic(errors.New("it should not be called"))
}

package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/domain"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	ksource "github.com/opst/knitlabel/pkg/domain/source/db"
)

type SourceInterface struct {
	Impl struct {
		Get               func(ctx context.Context, projectId string, sourceId string) (domain.InformationSource, error)
		Selected          func(ctx context.Context, projectId string) ([]domain.InformationSource, error)
		ReplaceExclusions func(ctx context.Context, projectId string, sourceId string, recordIds []string) error
		Exclusions        func(ctx context.Context, sourceId string) ([]string, error)
	}

	Calls struct {
		Get dbmock.CallLog[struct {
			ProjectId string
			SourceId  string
		}]
		Selected          dbmock.CallLog[string]
		ReplaceExclusions dbmock.CallLog[struct {
			ProjectId string
			SourceId  string
			RecordIds []string
		}]
		Exclusions dbmock.CallLog[string]
	}
}

var _ ksource.SourceInterface = &SourceInterface{}

func NewSourceInterface() *SourceInterface {
	return &SourceInterface{}
}

func (m *SourceInterface) Get(ctx context.Context, projectId string, sourceId string) (domain.InformationSource, error) {
	m.Calls.Get = append(m.Calls.Get, struct {
		ProjectId string
		SourceId  string
	}{ProjectId: projectId, SourceId: sourceId})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, projectId, sourceId)
	}
	panic(errors.New("it should not be called"))
}

func (m *SourceInterface) Selected(ctx context.Context, projectId string) ([]domain.InformationSource, error) {
	m.Calls.Selected = append(m.Calls.Selected, projectId)
	if m.Impl.Selected != nil {
		return m.Impl.Selected(ctx, projectId)
	}
	panic(errors.New("it should not be called"))
}

func (m *SourceInterface) ReplaceExclusions(ctx context.Context, projectId string, sourceId string, recordIds []string) error {
	m.Calls.ReplaceExclusions = append(m.Calls.ReplaceExclusions, struct {
		ProjectId string
		SourceId  string
		RecordIds []string
	}{ProjectId: projectId, SourceId: sourceId, RecordIds: recordIds})
	if m.Impl.ReplaceExclusions != nil {
		return m.Impl.ReplaceExclusions(ctx, projectId, sourceId, recordIds)
	}
	panic(errors.New("it should not be called"))
}

func (m *SourceInterface) Exclusions(ctx context.Context, sourceId string) ([]string, error) {
	m.Calls.Exclusions = append(m.Calls.Exclusions, sourceId)
	if m.Impl.Exclusions != nil {
		return m.Impl.Exclusions(ctx, sourceId)
	}
	panic(errors.New("it should not be called"))
}

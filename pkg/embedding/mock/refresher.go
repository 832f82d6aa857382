package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/embedding"
)

type Refresher struct {
	Impl struct {
		Refresh func(ctx context.Context, projectId string, embeddingId string) error
	}
	Calls struct {
		Refresh []struct {
			ProjectId   string
			EmbeddingId string
		}
	}
}

var _ embedding.Refresher = &Refresher{}

func New() *Refresher {
	return &Refresher{}
}

func (r *Refresher) Refresh(ctx context.Context, projectId string, embeddingId string) error {
	r.Calls.Refresh = append(r.Calls.Refresh, struct {
		ProjectId   string
		EmbeddingId string
	}{ProjectId: projectId, EmbeddingId: embeddingId})
	if r.Impl.Refresh != nil {
		return r.Impl.Refresh(ctx, projectId, embeddingId)
	}
	panic(errors.New("it should not be called"))
}

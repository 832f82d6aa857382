package mock

import (
	"context"
	"errors"

	"github.com/opst/knitlabel/pkg/payload/sample"
)

type RunSampleArgs struct {
	ProjectId string
	SourceId  string
	DocBin    string
}

type Sampler struct {
	Impl struct {
		RunSample func(ctx context.Context, projectId string, sourceId string, docbin string) (sample.Result, error)
	}
	Calls struct {
		RunSample []RunSampleArgs
	}
}

var _ sample.Sampler = &Sampler{}

func New() *Sampler {
	return &Sampler{}
}

func (m *Sampler) RunSample(ctx context.Context, projectId string, sourceId string, docbin string) (sample.Result, error) {
	m.Calls.RunSample = append(m.Calls.RunSample, RunSampleArgs{
		ProjectId: projectId, SourceId: sourceId, DocBin: docbin,
	})
	if m.Impl.RunSample != nil {
		return m.Impl.RunSample(ctx, projectId, sourceId, docbin)
	}
	panic(errors.New("it should not be called"))
}

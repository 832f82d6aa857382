// Package sample runs a rule-based source as a dry run.
//
// A sample run launches the same worker as a payload does, but it writes
// nothing into the database. Every file it stages is removed when it ends.
package sample

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/blob"
	bconf "github.com/opst/knitlabel/pkg/configs/backend"
	"github.com/opst/knitlabel/pkg/domain"
	"github.com/opst/knitlabel/pkg/domain/errors/k8serrors"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/payload/command"
	"github.com/opst/knitlabel/pkg/payload/logs"
	"github.com/opst/knitlabel/pkg/payload/runner"
)

// ErrNotRuleBased is returned when a sample run is requested for a learned source.
var ErrNotRuleBased = errors.New("sample runs are supported only for labeling functions")

// ErrSampleRunning is returned when the source is being sampled already.
var ErrSampleRunning = errors.New("the source is being sampled")

type Result struct {
	// labels calculated by the source, as the worker writes.
	//
	// It is `{}` when the worker does not write a valid result.
	Labels json.RawMessage

	// log lines of the worker
	Logs []string

	// true when the worker has not written a valid result
	HasErrors bool
}

type Sampler interface {
	// RunSample runs the source on a doc-bin.
	//
	// # Args
	//
	// - ctx
	//
	// - projectId, sourceId: source to be run. It should be a labeling function.
	//
	// - docbin: name of the doc-bin in the project. When empty, the doc-bin of all records is used.
	// Doc-bins other than that are removed after the run.
	//
	// # Returns
	//
	// - Result
	//
	// - error: when the run can not be done. Errors in the source code are not errors; see Result.HasErrors.
	RunSample(ctx context.Context, projectId string, sourceId string, docbin string) (Result, error)
}

type sampler struct {
	database  kdb.Database
	blobs     blob.Store
	runner    runner.Runner
	execution *bconf.ExecutionConfig
	logger    *log.Logger

	mu sync.Mutex
	// sources being sampled, as "project/source"
	running map[string]struct{}
}

func New(
	database kdb.Database, blobs blob.Store, r runner.Runner,
	execution *bconf.ExecutionConfig, logger *log.Logger,
) Sampler {
	return &sampler{
		database:  database,
		blobs:     blobs,
		runner:    r,
		execution: execution,
		logger:    logger,
		running:   map[string]struct{}{},
	}
}

// acquire marks the source as being sampled.
//
// It returns false when the source is being sampled already.
func (s *sampler) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.running[key]; ok {
		return false
	}
	s.running[key] = struct{}{}
	return true
}

func (s *sampler) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, key)
}

func (s *sampler) RunSample(ctx context.Context, projectId string, sourceId string, docbin string) (Result, error) {
	lock := blob.Key(projectId, sourceId)
	if !s.acquire(lock) {
		return Result{}, xe.WrapWithNote("source "+sourceId, ErrSampleRunning)
	}
	defer s.release(lock)

	keys := blob.SampleKeys{ProjectId: projectId, SourceId: sourceId, DocBinName: docbin}
	project, args, err := s.stage(ctx, projectId, sourceId, keys)
	dispose := project.Id != ""
	defer func() {
		if !dispose {
			return
		}
		for _, key := range keys.Disposable() {
			if err := s.blobs.Delete(ctx, project.OrganizationId, key); err != nil {
				s.logger.Warnf("sample of source %s: failed to delete %s: %+v", sourceId, key, err)
			}
		}
	}()
	if err != nil {
		return Result{}, err
	}

	buf := logs.New(s.execution.LogTimezone())
	code, err := s.runner.Run(ctx, runner.Command{
		Subject:   sourceId,
		Kind:      "sample",
		ProjectId: projectId,
		SourceId:  sourceId,
		Image:     s.execution.RuleBasedImage(),
		Args:      args,
		Network:   s.execution.Network(),
	}, buf)
	if errors.Is(err, k8serrors.ErrConflict) {
		// a worker of other process is sampling the source with the same files.
		dispose = false
		return Result{}, xe.WrapWithNote("source "+sourceId, ErrSampleRunning)
	} else if err != nil {
		return Result{}, xe.Wrap(err)
	}
	s.logger.Infof("sample of source %s: worker exited with %d", sourceId, code)

	result := Result{Labels: json.RawMessage(`{}`), Logs: buf.Lines()}
	output, err := s.blobs.Get(ctx, project.OrganizationId, keys.Output())
	switch {
	case errors.Is(err, blob.ErrNotFound):
		s.logger.Infof("sample of source %s: no result", sourceId)
		result.HasErrors = true
	case err != nil:
		return Result{}, xe.Wrap(err)
	case !json.Valid(output):
		s.logger.Infof("sample of source %s: result is not json", sourceId)
		result.HasErrors = true
	default:
		result.Labels = json.RawMessage(output)
	}
	return result, nil
}

// stage reads the source and puts files for the worker.
//
// The Session is closed before the worker runs.
// The project is returned when it is found, even if staging fails.
func (s *sampler) stage(
	ctx context.Context, projectId string, sourceId string, keys blob.SampleKeys,
) (domain.Project, []string, error) {
	session, err := s.database.Open(ctx)
	if err != nil {
		return domain.Project{}, nil, xe.Wrap(err)
	}
	defer session.Close()

	project, err := session.Projects().Get(ctx, projectId)
	if err != nil {
		return domain.Project{}, nil, xe.Wrap(err)
	}
	source, err := session.Sources().Get(ctx, projectId, sourceId)
	if err != nil {
		return domain.Project{}, nil, xe.Wrap(err)
	}
	if source.Kind != domain.LabelingFunction {
		return domain.Project{}, nil, xe.WrapWithNote(string(source.Kind), ErrNotRuleBased)
	}

	args, err := command.RuleBased(
		ctx, s.blobs, session, project, source.SourceCode,
		command.RuleBasedKeys{
			DocBin:    keys.DocBin(),
			Function:  keys.Function(),
			Knowledge: keys.Knowledge(),
			Output:    keys.Output(),
		},
	)
	if err != nil {
		return project, nil, err
	}
	return project, args, nil
}

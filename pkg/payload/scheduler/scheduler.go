// Package scheduler creates payloads of information sources and runs them.
//
// A payload is run in these steps, one after another:
//
//  1. prepare inputs (learned sources only)
//  2. stage files into the blob store, and launch a worker
//  3. ingest the result of the worker
//  4. make the payload FINISHED or FAILED
//  5. remove staged files, recompute statistics (FINISHED only) and post telemetry
//
// Runs open a Session for each step, and do not hold any while the worker runs.
// Synchronous runs are not cancelled with the caller.
package scheduler

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/blob"
	bconf "github.com/opst/knitlabel/pkg/configs/backend"
	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/payload/command"
	"github.com/opst/knitlabel/pkg/payload/dispatch"
	"github.com/opst/knitlabel/pkg/payload/ingest"
	"github.com/opst/knitlabel/pkg/payload/lifecycle"
	"github.com/opst/knitlabel/pkg/payload/logs"
	"github.com/opst/knitlabel/pkg/payload/prepare"
	"github.com/opst/knitlabel/pkg/payload/runner"
	"github.com/opst/knitlabel/pkg/telemetry"
)

// ErrResultHasErrors tells the worker's result is missing or invalid.
//
// Details are in logs of the payload.
var ErrResultHasErrors = errors.New("result of the worker has errors")

// ErrUnfinished tells a synchronous run has ended without making the payload terminal.
//
// It happens when the database is unreachable. The payload is left CREATED.
var ErrUnfinished = errors.New("payload is left unfinished")

type Scheduler interface {
	// CreatePayload creates a payload of the source and runs it.
	//
	// # Args
	//
	// - ctx
	//
	// - projectId, sourceId: source to be run.
	//
	// - userId: who requests. Notifications are sent to.
	//
	// - asynchronous: when true, it returns just after the payload is created,
	// and the payload is run in background. Otherwise, it returns after the run.
	//
	// # Returns
	//
	// - domain.Payload: the payload. When asynchronous is false, it is in a terminal state.
	//
	// - error: when the payload can not be created, or ErrUnfinished.
	// Failures of the run make the payload FAILED, and they are not returned.
	CreatePayload(ctx context.Context, projectId string, sourceId string, userId string, asynchronous bool) (domain.Payload, error)

	// TrainAllModels creates payloads of all selected sources in the project.
	//
	// Payloads run independently. Their order is not defined.
	// Payloads created are run even when others can not be created.
	TrainAllModels(ctx context.Context, projectId string, userId string, asynchronous bool) ([]domain.Payload, error)
}

type Deps struct {
	Database  kdb.Database
	Blobs     blob.Store
	Runner    runner.Runner
	Preparer  prepare.Preparer
	Ingestor  ingest.Ingestor
	Lifecycle *lifecycle.Lifecycle
	Telemetry telemetry.Sink
	Jobs      *dispatch.Dispatcher
}

type scheduler struct {
	Deps
	execution *bconf.ExecutionConfig
	logger    *log.Logger
	now       func() time.Time

	flushInterval time.Duration
}

type Option func(*scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *scheduler) {
		s.now = now
	}
}

// WithLogFlushInterval sets how often logs of running workers are stored. default = 5s
func WithLogFlushInterval(d time.Duration) Option {
	return func(s *scheduler) {
		s.flushInterval = d
	}
}

func New(deps Deps, execution *bconf.ExecutionConfig, logger *log.Logger, options ...Option) Scheduler {
	s := &scheduler{
		Deps:      deps,
		execution: execution,
		logger:    logger,
		now:       time.Now,

		flushInterval: 5 * time.Second,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *scheduler) CreatePayload(
	ctx context.Context, projectId string, sourceId string, userId string, asynchronous bool,
) (domain.Payload, error) {
	var j *job
	err := s.within(ctx, func(session kdb.Session) error {
		project, err := session.Projects().Get(ctx, projectId)
		if err != nil {
			return xe.Wrap(err)
		}
		source, err := session.Sources().Get(ctx, projectId, sourceId)
		if err != nil {
			return xe.Wrap(err)
		}
		j, err = s.create(ctx, session, lifecycle.Scope{Project: project, Source: source, UserId: userId})
		return err
	})
	if err != nil {
		return domain.Payload{}, err
	}

	return s.start(ctx, j, asynchronous)
}

func (s *scheduler) TrainAllModels(
	ctx context.Context, projectId string, userId string, asynchronous bool,
) ([]domain.Payload, error) {
	jobs := []*job{}
	err := s.within(ctx, func(session kdb.Session) error {
		project, err := session.Projects().Get(ctx, projectId)
		if err != nil {
			return xe.Wrap(err)
		}
		sources, err := session.Sources().Selected(ctx, projectId)
		if err != nil {
			return xe.Wrap(err)
		}
		for _, source := range sources {
			j, err := s.create(ctx, session, lifecycle.Scope{Project: project, Source: source, UserId: userId})
			if err != nil {
				return err
			}
			jobs = append(jobs, j)
		}
		return nil
	})

	payloads := make([]domain.Payload, 0, len(jobs))
	for _, j := range jobs {
		// created payloads are run even when others could not be created.
		p, perr := s.start(ctx, j, asynchronous)
		payloads = append(payloads, p)
		if err == nil && perr != nil {
			err = perr
		}
	}
	return payloads, err
}

// within runs fn with a Session, and closes it.
//
// Sessions hold a connection. Do not call within in fn.
func (s *scheduler) within(ctx context.Context, fn func(kdb.Session) error) error {
	session, err := s.Database.Open(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer session.Close()
	return fn(session)
}

func (s *scheduler) create(ctx context.Context, session kdb.Session, scope lifecycle.Scope) (*job, error) {
	payload, err := s.Lifecycle.Create(ctx, session, scope)
	if err != nil {
		return nil, err
	}
	return &job{
		scope:   scope,
		payload: payload,
		keys:    blob.PayloadKeys{ProjectId: scope.Project.Id, PayloadId: payload.Id},
		logs:    logs.New(s.execution.LogTimezone(), logs.WithClock(s.now)),
	}, nil
}

// start runs the job.
//
// The run does not follow cancellation of ctx, even if it is synchronous.
func (s *scheduler) start(ctx context.Context, j *job, asynchronous bool) (domain.Payload, error) {
	if asynchronous {
		s.Jobs.Go(ctx, "payload "+j.payload.Id, func(ctx context.Context) { s.execute(ctx, j) })
		return j.payload, nil
	}

	ctx = context.WithoutCancel(ctx)
	s.execute(ctx, j)

	updated := j.payload
	if err := s.within(ctx, func(session kdb.Session) error {
		p, err := session.Payloads().Get(ctx, j.scope.Project.Id, j.payload.Id)
		if err != nil {
			return xe.Wrap(err)
		}
		updated = p
		return nil
	}); err != nil {
		return updated, err
	}
	if !updated.State.Terminal() {
		return updated, xe.WrapWithNote("payload "+updated.Id, ErrUnfinished)
	}
	return updated, nil
}

// job is one run of a payload.
type job struct {
	scope   lifecycle.Scope
	payload domain.Payload
	keys    blob.PayloadKeys
	logs    *logs.Buffer

	// when the worker is launched. zero if not launched.
	launchedAt time.Time
}

func (s *scheduler) execute(ctx context.Context, j *job) {
	defer s.cleanup(ctx, j)

	s.run(ctx, j)
	stoppedAt := s.now()

	var runtime time.Duration
	if !j.launchedAt.IsZero() {
		runtime = stoppedAt.Sub(j.launchedAt)
	}
	s.Telemetry.Post(ctx, j.scope.UserId, telemetry.AddInformationSourceRun{
		ProjectName: j.scope.Project.Name + "-" + j.scope.Project.Id,
		Type:        string(j.scope.Source.Kind),
		Code:        j.scope.Source.SourceCode,
		Logs:        j.logs.Lines(),
		RunTime:     runtime.Seconds(),
	})
}

// run the payload until it gets terminal.
func (s *scheduler) run(ctx context.Context, j *job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("payload %s: panic: %v\n%s", j.payload.Id, r, debug.Stack())
			s.fail(ctx, j)
		}
	}()

	err := s.pipeline(ctx, j)
	if err == nil {
		return
	}

	var perr *prepare.Error
	switch {
	case errors.Is(err, ErrResultHasErrors):
		s.logger.Infof("payload %s: %v", j.payload.Id, err)
	case errors.As(err, &perr):
		s.logger.Infof("payload %s: preparation failed: %s", j.payload.Id, perr.Message)
		j.logs.Add(perr.Message)
	case errors.Is(err, prepare.ErrNoEmbeddingName):
		s.logger.Infof("payload %s: preparation failed: %v", j.payload.Id, err)
		j.logs.Add(prepare.ErrNoEmbeddingName.Error())
	default:
		s.logger.Errorf("payload %s: failed: %+v", j.payload.Id, err)
	}
	s.fail(ctx, j)
}

// pipeline runs the payload in three phases: launch, watch and finish.
//
// No Session is held while the worker runs.
func (s *scheduler) pipeline(ctx context.Context, j *job) error {
	var cmd runner.Command
	if err := s.within(ctx, func(session kdb.Session) error {
		input, err := s.Preparer.Prepare(ctx, session, j.scope.Project, j.scope.Source, j.scope.UserId)
		if err != nil {
			return err
		}

		cmd, err = s.command(ctx, session, j, input)
		if err != nil {
			return err
		}

		s.Lifecycle.Started(ctx, session, j.scope)
		j.launchedAt = s.now()
		return xe.Wrap(session.Payloads().SetStarted(ctx, j.payload.Id, j.launchedAt))
	}); err != nil {
		return err
	}

	code, err := s.watch(ctx, j, cmd)
	if err != nil {
		return xe.Wrap(err)
	}
	stoppedAt := s.now()
	s.logger.Infof("payload %s: worker exited with %d", j.payload.Id, code)

	return s.within(ctx, func(session kdb.Session) error {
		if err := session.Payloads().SetLogs(ctx, j.payload.Id, j.logs.Lines(), &stoppedAt); err != nil {
			return xe.Wrap(err)
		}

		hasErrors, err := s.Ingestor.Ingest(ctx, session, j.scope.Project, j.scope.Source, j.payload, j.logs)
		if err != nil {
			return xe.Wrap(err)
		}
		if hasErrors {
			return ErrResultHasErrors
		}

		if err := s.Lifecycle.Finish(ctx, session, j.scope, j.payload.Id); err != nil {
			return err
		}
		s.recompute(ctx, session, j)
		return nil
	})
}

// watch runs the worker, storing its logs every flush interval while it runs.
func (s *scheduler) watch(ctx context.Context, j *job, cmd runner.Command) (int, error) {
	done := make(chan struct{})
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		ticker := time.NewTicker(s.flushInterval)
		defer ticker.Stop()

		stored := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			if j.logs.Len() == stored {
				continue
			}
			lines := j.logs.Lines()
			if err := s.within(ctx, func(session kdb.Session) error {
				return session.Payloads().SetLogs(ctx, j.payload.Id, lines, nil)
			}); err != nil {
				s.logger.Warnf("payload %s: failed to store logs: %+v", j.payload.Id, err)
				continue
			}
			stored = len(lines)
		}
	}()
	defer func() {
		close(done)
		<-flushed
	}()

	return s.Runner.Run(ctx, cmd, j.logs)
}

func (s *scheduler) command(ctx context.Context, session kdb.Session, j *job, input *prepare.Input) (runner.Command, error) {
	cmd := runner.Command{
		Subject:   j.payload.Id,
		Kind:      "payload",
		ProjectId: j.scope.Project.Id,
		SourceId:  j.scope.Source.Id,
		Network:   s.execution.Network(),
	}

	switch j.scope.Source.Kind {
	case domain.LabelingFunction:
		args, err := command.RuleBased(
			ctx, s.Blobs, session, j.scope.Project, j.payload.SourceCode,
			command.RuleBasedKeys{
				DocBin:    j.keys.DocBin(),
				Function:  j.keys.Function(),
				Knowledge: j.keys.Knowledge(),
				Output:    j.keys.Output(),
			},
		)
		if err != nil {
			return runner.Command{}, err
		}
		cmd.Image = s.execution.RuleBasedImage()
		cmd.Args = args
	case domain.ActiveLearning:
		if input == nil {
			return runner.Command{}, xe.New("learned source has no input")
		}
		args, err := command.Learned(
			ctx, s.Blobs, j.scope.Project, j.payload.SourceCode, input.Document,
			command.LearnedKeys{
				Input:     j.keys.Input(),
				Function:  j.keys.Function(),
				Auxiliary: input.AuxiliaryKey,
				Output:    j.keys.Output(),
			},
		)
		if err != nil {
			return runner.Command{}, err
		}
		cmd.Image = s.execution.LearnedImage()
		cmd.Args = args
	default:
		return runner.Command{}, xe.New("unknown information source type: " + string(j.scope.Source.Kind))
	}
	return cmd, nil
}

// fail makes the payload FAILED, storing logs written so far.
func (s *scheduler) fail(ctx context.Context, j *job) {
	err := s.within(ctx, func(session kdb.Session) error {
		if err := session.Payloads().SetLogs(ctx, j.payload.Id, j.logs.Lines(), nil); err != nil {
			s.logger.Warnf("payload %s: failed to store logs: %+v", j.payload.Id, err)
		}
		_, err := s.Lifecycle.Fail(ctx, session, j.scope, j.payload.Id)
		return err
	})
	if err != nil {
		s.logger.Errorf("payload %s: failed to be FAILED: %+v", j.payload.Id, err)
	}
}

// recompute statistics of the source. Errors are only logged.
func (s *scheduler) recompute(ctx context.Context, session kdb.Session, j *job) {
	if _, err := session.Statistics().Recompute(ctx, j.scope.Project.Id, j.scope.Source.Id); err != nil {
		s.logger.Warnf("payload %s: failed to recompute statistics of source %s: %+v", j.payload.Id, j.scope.Source.Id, err)
		return
	}
	s.Lifecycle.StatisticsUpdated(ctx, j.scope, j.payload.Id)
}

// cleanup removes files staged for the payload and its output.
func (s *scheduler) cleanup(ctx context.Context, j *job) {
	for _, key := range j.keys.All() {
		if err := s.Blobs.Delete(ctx, j.scope.Project.OrganizationId, key); err != nil {
			s.logger.Warnf("payload %s: failed to delete %s: %+v", j.payload.Id, key, err)
		}
	}
}

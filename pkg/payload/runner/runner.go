// Package runner runs workers in isolation and drains their logs.
package runner

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	bconf "github.com/opst/knitlabel/pkg/configs/backend"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/payload/logs"
	"github.com/opst/knitlabel/pkg/utils/retry"
	"github.com/opst/knitlabel/pkg/workloads/k8s"
	"github.com/opst/knitlabel/pkg/workloads/worker"
)

// Command is one worker execution.
//
// Args are positional, and the order is significant.
type Command struct {
	// identifier of the execution. It names the worker.
	Subject string

	// type of Subject. "payload" or "sample".
	Kind string

	ProjectId string
	SourceId  string

	Image   string
	Args    []string
	Network string
}

type Runner interface {
	// Run launches a worker and blocks until it exits.
	//
	// Lines of the worker's log are appended to buf as they arrive.
	//
	// # Returns
	//
	// - int: exit code of the worker
	//
	// - error: when the worker could not be run or observed.
	// A worker exiting with non-zero code is not an error.
	Run(ctx context.Context, cmd Command, buf *logs.Buffer) (int, error)
}

type k8sRunner struct {
	cluster k8s.Cluster
	conf    *bconf.ClusterConfig
	backoff retry.Backoff
	logger  *log.Logger
}

type Option func(*k8sRunner)

// WithBackoff sets interval of watching worker status. default = 1s
func WithBackoff(b retry.Backoff) Option {
	return func(r *k8sRunner) {
		r.backoff = b
	}
}

// New creates Runner running workers as k8s Jobs.
func New(cluster k8s.Cluster, conf *bconf.ClusterConfig, logger *log.Logger, options ...Option) Runner {
	r := &k8sRunner{
		cluster: cluster,
		conf:    conf,
		backoff: retry.StaticBackoff(time.Second),
		logger:  logger,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// max length of a log line. Longer lines are split.
const maxLineLength = 1024 * 1024

func (r *k8sRunner) Run(ctx context.Context, cmd Command, buf *logs.Buffer) (int, error) {
	w, err := worker.Spawn(ctx, r.cluster, r.backoff, r.conf, worker.Executable{
		Subject:   cmd.Subject,
		Kind:      cmd.Kind,
		Image:     cmd.Image,
		Args:      cmd.Args,
		Network:   cmd.Network,
		ProjectId: cmd.ProjectId,
		SourceId:  cmd.SourceId,
	})
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			r.logger.Warnf("%s %s: failed to remove worker: %+v", cmd.Kind, cmd.Subject, err)
		}
	}()
	r.logger.Infof("%s %s: worker started (image: %s)", cmd.Kind, cmd.Subject, cmd.Image)

	if err := r.drain(ctx, w, buf); err != nil {
		r.logger.Warnf("%s %s: log stream is broken: %+v", cmd.Kind, cmd.Subject, err)
	}

	code, reason, err := w.Exit(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	r.logger.Infof("%s %s: worker exited with %d (%s)", cmd.Kind, cmd.Subject, code, reason)
	return int(code), nil
}

func (r *k8sRunner) drain(ctx context.Context, w worker.Worker, buf *logs.Buffer) error {
	stream, err := w.Log(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		buf.Append(strings.TrimRight(scanner.Text(), "\r"))
	}
	return scanner.Err()
}

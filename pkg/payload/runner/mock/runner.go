package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/opst/knitlabel/pkg/payload/logs"
	"github.com/opst/knitlabel/pkg/payload/runner"
)

type Runner struct {
	Impl struct {
		Run func(ctx context.Context, cmd runner.Command, buf *logs.Buffer) (int, error)
	}
	Calls struct {
		Run []runner.Command
	}

	mu sync.Mutex
}

var _ runner.Runner = &Runner{}

func New() *Runner {
	return &Runner{}
}

// Exiting returns a Runner which writes lines into the log and exits with code.
func Exiting(code int, lines ...string) *Runner {
	r := New()
	r.Impl.Run = func(_ context.Context, _ runner.Command, buf *logs.Buffer) (int, error) {
		buf.Append(lines...)
		return code, nil
	}
	return r
}

func (r *Runner) Run(ctx context.Context, cmd runner.Command, buf *logs.Buffer) (int, error) {
	r.mu.Lock()
	r.Calls.Run = append(r.Calls.Run, cmd)
	r.mu.Unlock()

	if r.Impl.Run != nil {
		return r.Impl.Run(ctx, cmd, buf)
	}
	panic(errors.New("it should not be called"))
}

// Commands returns a snapshot of commands Run has been called with.
func (r *Runner) Commands() []runner.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]runner.Command, len(r.Calls.Run))
	copy(out, r.Calls.Run)
	return out
}

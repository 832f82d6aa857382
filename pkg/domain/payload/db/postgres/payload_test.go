package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/pool/testenv"
	"github.com/opst/knitlabel/pkg/domain"
	kpgpayload "github.com/opst/knitlabel/pkg/domain/payload/db/postgres"
	"github.com/opst/knitlabel/pkg/utils/cmp"
	"github.com/opst/knitlabel/pkg/utils/try"
)

func fixture() testenv.Fixture {
	return testenv.Fixture{
		ProjectId:   uuid.NewString(),
		AttributeId: uuid.NewString(),
		TaskId:      uuid.NewString(),
		Labels:      map[string]string{"A": uuid.NewString()},
		Records:     map[string]int{uuid.NewString(): 5},
		SourceId:    uuid.NewString(),
	}
}

func TestPayload(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("iterations are counted by created payloads", func(t *testing.T) {
		ctx := context.Background()
		pool := poolBroaker.GetPool(ctx, t)
		fx := fixture()
		fx.Apply(ctx, t, pool)

		conn := try.To(pool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		testee := kpgpayload.New(conn)

		for want := 1; want <= 3; want++ {
			count := try.To(testee.Count(ctx, fx.ProjectId, fx.SourceId)).OrFatal(t)
			p := try.To(testee.New(ctx, domain.PayloadSpec{
				ProjectId:  fx.ProjectId,
				SourceId:   fx.SourceId,
				Iteration:  count + 1,
				SourceCode: "code",
				CreatedBy:  "user",
			})).OrFatal(t)

			if p.Iteration != want {
				t.Errorf("iteration: actual = %d, expected = %d", p.Iteration, want)
			}
			if p.State != domain.Created {
				t.Errorf("state: actual = %s", p.State)
			}
		}
	})

	t.Run("Transit changes CREATED payload only once", func(t *testing.T) {
		ctx := context.Background()
		pool := poolBroaker.GetPool(ctx, t)
		fx := fixture()
		fx.Apply(ctx, t, pool)

		conn := try.To(pool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		testee := kpgpayload.New(conn)

		p := try.To(testee.New(ctx, domain.PayloadSpec{
			ProjectId: fx.ProjectId, SourceId: fx.SourceId, Iteration: 1,
			SourceCode: "code", CreatedBy: "user",
		})).OrFatal(t)

		if err := testee.Transit(ctx, p.Id, domain.Finished); err != nil {
			t.Fatal(err)
		}
		if err := testee.Transit(ctx, p.Id, domain.Failed); !errors.Is(err, domain.ErrInvalidPayloadStateChanging) {
			t.Errorf("second transition: unexpected error: %+v", err)
		}

		got := try.To(testee.Get(ctx, fx.ProjectId, p.Id)).OrFatal(t)
		if got.State != domain.Finished || got.Progress != 1 {
			t.Errorf("unexpected payload: %+v", got)
		}
	})

	t.Run("SetLogs overwrites logs and records finish time", func(t *testing.T) {
		ctx := context.Background()
		pool := poolBroaker.GetPool(ctx, t)
		fx := fixture()
		fx.Apply(ctx, t, pool)

		conn := try.To(pool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		testee := kpgpayload.New(conn)

		p := try.To(testee.New(ctx, domain.PayloadSpec{
			ProjectId: fx.ProjectId, SourceId: fx.SourceId, Iteration: 1,
			SourceCode: "code", CreatedBy: "user",
		})).OrFatal(t)

		if err := testee.SetLogs(ctx, p.Id, []string{"a"}, nil); err != nil {
			t.Fatal(err)
		}
		finishedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := testee.SetLogs(ctx, p.Id, []string{"a", "b"}, &finishedAt); err != nil {
			t.Fatal(err)
		}

		got := try.To(testee.Get(ctx, fx.ProjectId, p.Id)).OrFatal(t)
		if !cmp.SliceEq(got.Logs, []string{"a", "b"}) {
			t.Errorf("logs: %v", got.Logs)
		}
		if got.FinishedAt == nil || !got.FinishedAt.Equal(finishedAt) {
			t.Errorf("finished at: %v", got.FinishedAt)
		}
	})

	t.Run("Get returns ErrMissing for unknown payload", func(t *testing.T) {
		ctx := context.Background()
		pool := poolBroaker.GetPool(ctx, t)

		conn := try.To(pool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()

		_, err := kpgpayload.New(conn).Get(ctx, uuid.NewString(), uuid.NewString())
		if !errors.Is(err, domain.ErrMissing) {
			t.Errorf("unexpected error: %+v", err)
		}
	})
}

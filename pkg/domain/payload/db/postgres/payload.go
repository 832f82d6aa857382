package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	"github.com/opst/knitlabel/pkg/domain"
	pgerrors "github.com/opst/knitlabel/pkg/domain/errors/dberrors/postgres"
	kpayload "github.com/opst/knitlabel/pkg/domain/payload/db"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type pgPayload struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) kpayload.PayloadInterface {
	return &pgPayload{conn: conn}
}

type payloadRow struct {
	Id         string
	ProjectId  string
	SourceId   string
	Iteration  int
	State      string
	Progress   float64
	SourceCode string
	Logs       []string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	CreatedBy  string
}

func (r payloadRow) toDomain() (domain.Payload, error) {
	state, err := domain.AsPayloadState(r.State)
	if err != nil {
		return domain.Payload{}, xe.Wrap(err)
	}
	return domain.Payload{
		Id:         r.Id,
		ProjectId:  r.ProjectId,
		SourceId:   r.SourceId,
		Iteration:  r.Iteration,
		State:      state,
		Progress:   r.Progress,
		SourceCode: r.SourceCode,
		Logs:       r.Logs,
		CreatedAt:  r.CreatedAt,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		CreatedBy:  r.CreatedBy,
	}, nil
}

const payloadColumns = `
	"id"::text as "id",
	"project_id"::text as "project_id",
	"source_id"::text as "source_id",
	"iteration", "state", "progress", "source_code", "logs",
	"created_at", "started_at", "finished_at", "created_by"
`

func (p *pgPayload) Count(ctx context.Context, projectId string, sourceId string) (int, error) {
	var count int
	if err := p.conn.QueryRow(
		ctx,
		`
		select count(*) from "information_source_payload"
		where "project_id" = $1 and "source_id" = $2
		`,
		projectId, sourceId,
	).Scan(&count); err != nil {
		return 0, xe.Wrap(err)
	}
	return count, nil
}

func (p *pgPayload) New(ctx context.Context, spec domain.PayloadSpec) (domain.Payload, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return domain.Payload{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	rows, err := scanner.New[payloadRow]().QueryAll(
		ctx, tx,
		`
		insert into "information_source_payload"
			("id", "project_id", "source_id", "iteration", "state", "source_code", "created_by")
		values ($1, $2, $3, $4, $5, $6, $7)
		returning `+payloadColumns,
		uuid.NewString(), spec.ProjectId, spec.SourceId, spec.Iteration,
		string(domain.Created), spec.SourceCode, spec.CreatedBy,
	)
	if err != nil {
		return domain.Payload{}, xe.Wrap(err)
	}
	if len(rows) != 1 {
		return domain.Payload{}, xe.New("payload is not inserted")
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Payload{}, xe.Wrap(err)
	}
	return rows[0].toDomain()
}

func (p *pgPayload) Get(ctx context.Context, projectId string, payloadId string) (domain.Payload, error) {
	rows, err := scanner.New[payloadRow]().QueryAll(
		ctx, p.conn,
		`select `+payloadColumns+` from "information_source_payload"
		where "project_id" = $1 and "id" = $2`,
		projectId, payloadId,
	)
	if err != nil {
		return domain.Payload{}, xe.Wrap(err)
	}
	switch len(rows) {
	case 0:
		return domain.Payload{}, xe.Wrap(pgerrors.Missing{
			Table: "information_source_payload", Identity: "id=" + payloadId,
		})
	case 1:
		return rows[0].toDomain()
	default:
		return domain.Payload{}, xe.Wrap(pgerrors.TooMuch{
			Table: "information_source_payload", Identity: "id=" + payloadId, Expected: 1,
		})
	}
}

// update runs a single-row update in its own transaction.
func (p *pgPayload) update(ctx context.Context, payloadId string, query string, args ...any) error {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	ctag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return xe.Wrap(pgerrors.Missing{
			Table: "information_source_payload", Identity: "id=" + payloadId,
		})
	}
	return xe.Wrap(tx.Commit(ctx))
}

func (p *pgPayload) SetStarted(ctx context.Context, payloadId string, at time.Time) error {
	return p.update(
		ctx, payloadId,
		`update "information_source_payload" set "started_at" = $2 where "id" = $1`,
		payloadId, at,
	)
}

func (p *pgPayload) SetLogs(ctx context.Context, payloadId string, logs []string, finishedAt *time.Time) error {
	if logs == nil {
		logs = []string{}
	}
	return p.update(
		ctx, payloadId,
		`
		update "information_source_payload"
		set "logs" = $2, "finished_at" = coalesce($3, "finished_at")
		where "id" = $1
		`,
		payloadId, logs, finishedAt,
	)
}

func (p *pgPayload) Transit(ctx context.Context, payloadId string, newState domain.PayloadState) error {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	var current string
	if err := tx.QueryRow(
		ctx,
		`select "state" from "information_source_payload" where "id" = $1 for update`,
		payloadId,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return xe.Wrap(pgerrors.Missing{
				Table: "information_source_payload", Identity: "id=" + payloadId,
			})
		}
		return xe.Wrap(err)
	}

	from, err := domain.AsPayloadState(current)
	if err != nil {
		return xe.Wrap(err)
	}
	if !from.CanTransitTo(newState) {
		return xe.Wrap(domain.NewErrInvalidPayloadStateChanging(from, newState))
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "information_source_payload"
		set
			"state" = $2,
			"progress" = case when $2 = 'FINISHED' then 1 else "progress" end
		where "id" = $1
		`,
		payloadId, string(newState),
	); err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(tx.Commit(ctx))
}

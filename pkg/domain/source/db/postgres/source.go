package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	"github.com/opst/knitlabel/pkg/domain"
	pgerrors "github.com/opst/knitlabel/pkg/domain/errors/dberrors/postgres"
	ksource "github.com/opst/knitlabel/pkg/domain/source/db"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/utils/slices"
)

type pgSource struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) ksource.SourceInterface {
	return &pgSource{conn: conn}
}

type sourceRow struct {
	Id             string
	ProjectId      string
	LabelingTaskId string
	Type           string
	ReturnType     string
	Name           string
	Description    string
	SourceCode     string
	IsSelected     bool
	Version        int
	CreatedAt      time.Time
	CreatedBy      string
}

func (r sourceRow) toDomain() (domain.InformationSource, error) {
	kind, err := domain.AsSourceKind(r.Type)
	if err != nil {
		return domain.InformationSource{}, xe.Wrap(err)
	}
	shape, err := domain.AsOutputShape(r.ReturnType)
	if err != nil {
		return domain.InformationSource{}, xe.Wrap(err)
	}
	return domain.InformationSource{
		Id:             r.Id,
		ProjectId:      r.ProjectId,
		LabelingTaskId: r.LabelingTaskId,
		Kind:           kind,
		Shape:          shape,
		Name:           r.Name,
		Description:    r.Description,
		SourceCode:     r.SourceCode,
		Selected:       r.IsSelected,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		CreatedBy:      r.CreatedBy,
	}, nil
}

const sourceQuery = `
select
	"id"::text as "id",
	"project_id"::text as "project_id",
	"labeling_task_id"::text as "labeling_task_id",
	"type", "return_type", "name", "description", "source_code",
	"is_selected", "version", "created_at", "created_by"
from "information_source"
`

func (s *pgSource) Get(ctx context.Context, projectId string, sourceId string) (domain.InformationSource, error) {
	rows, err := scanner.New[sourceRow]().QueryAll(
		ctx, s.conn,
		sourceQuery+`where "project_id" = $1 and "id" = $2`,
		projectId, sourceId,
	)
	if err != nil {
		return domain.InformationSource{}, xe.Wrap(err)
	}
	if len(rows) == 0 {
		return domain.InformationSource{}, xe.Wrap(pgerrors.Missing{
			Table: "information_source", Identity: "id=" + sourceId,
		})
	}
	return rows[0].toDomain()
}

func (s *pgSource) Selected(ctx context.Context, projectId string) ([]domain.InformationSource, error) {
	rows, err := scanner.New[sourceRow]().QueryAll(
		ctx, s.conn,
		sourceQuery+`where "project_id" = $1 and "is_selected" order by "created_at", "id"`,
		projectId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	sources := make([]domain.InformationSource, 0, len(rows))
	for _, r := range rows {
		src, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (s *pgSource) ReplaceExclusions(ctx context.Context, projectId string, sourceId string, recordIds []string) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(
		ctx,
		`
		delete from "information_source_statistics_exclusion"
		where "project_id" = $1 and "source_id" = $2
		`,
		projectId, sourceId,
	); err != nil {
		return xe.Wrap(err)
	}

	if len(recordIds) != 0 {
		ids := slices.Map(recordIds, func(string) string { return uuid.NewString() })
		if _, err := tx.Exec(
			ctx,
			`
			insert into "information_source_statistics_exclusion"
				("id", "project_id", "source_id", "record_id")
			select "ex"."id", $1, $2, "ex"."record_id"
			from unnest($3::uuid[], $4::uuid[]) as "ex"("id", "record_id")
			`,
			projectId, sourceId, ids, recordIds,
		); err != nil {
			return xe.Wrap(err)
		}
	}

	return xe.Wrap(tx.Commit(ctx))
}

func (s *pgSource) Exclusions(ctx context.Context, sourceId string) ([]string, error) {
	ids, err := scanner.New[string]().QueryAll(
		ctx, s.conn,
		`
		select "record_id"::text from "information_source_statistics_exclusion"
		where "source_id" = $1
		order by "record_id"
		`,
		sourceId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return ids, nil
}

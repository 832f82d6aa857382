package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	"github.com/opst/knitlabel/pkg/domain"
	pgerrors "github.com/opst/knitlabel/pkg/domain/errors/dberrors/postgres"
	kproject "github.com/opst/knitlabel/pkg/domain/project/db"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type pgProject struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) kproject.ProjectInterface {
	return &pgProject{conn: conn}
}

func (p *pgProject) Get(ctx context.Context, projectId string) (domain.Project, error) {
	rows, err := scanner.New[domain.Project]().QueryAll(
		ctx, p.conn,
		`
		select
			"id"::text as "id", "name",
			"organization_id"::text as "organization_id", "tokenizer"
		from "project" where "id" = $1
		`,
		projectId,
	)
	if err != nil {
		return domain.Project{}, xe.Wrap(err)
	}
	if len(rows) == 0 {
		return domain.Project{}, xe.Wrap(pgerrors.Missing{Table: "project", Identity: "id=" + projectId})
	}
	return rows[0], nil
}

func (p *pgProject) Task(ctx context.Context, projectId string, taskId string) (domain.LabelingTask, error) {
	var task domain.LabelingTask
	var typ string
	if err := p.conn.QueryRow(
		ctx,
		`
		select
			"id"::text, "project_id"::text, "name",
			coalesce("attribute_id"::text, ''), "task_type"
		from "labeling_task"
		where "project_id" = $1 and "id" = $2
		`,
		projectId, taskId,
	).Scan(&task.Id, &task.ProjectId, &task.Name, &task.AttributeId, &typ); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LabelingTask{}, xe.Wrap(pgerrors.Missing{
				Table: "labeling_task", Identity: "id=" + taskId,
			})
		}
		return domain.LabelingTask{}, xe.Wrap(err)
	}

	tt, err := domain.AsTaskType(typ)
	if err != nil {
		return domain.LabelingTask{}, xe.Wrap(err)
	}
	task.Type = tt
	return task, nil
}

func (p *pgProject) TokenizationProgress(ctx context.Context, projectId string) (float64, error) {
	var progress float64
	if err := p.conn.QueryRow(
		ctx,
		`
		select coalesce(
			(
				select "progress" from "record_tokenization_task"
				where "project_id" = $1
				order by "started_at" desc
				limit 1
			),
			0
		)
		`,
		projectId,
	).Scan(&progress); err != nil {
		return 0, xe.Wrap(err)
	}
	return progress, nil
}

func (p *pgProject) KnowledgeBase(ctx context.Context, projectId string) (domain.KnowledgeBase, error) {
	type term struct {
		Name  string
		Value string
	}
	terms, err := scanner.New[term]().QueryAll(
		ctx, p.conn,
		`
		select "kb"."name", "kt"."value"
		from "knowledge_base" as "kb"
		inner join "knowledge_term" as "kt" on "kt"."knowledge_base_id" = "kb"."id"
		where "kb"."project_id" = $1 and not "kt"."blacklisted"
		order by "kb"."name", "kt"."value"
		`,
		projectId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	kb := domain.KnowledgeBase{}
	for _, t := range terms {
		kb[t.Name] = append(kb[t.Name], t.Value)
	}

	// empty knowledge bases are still visible to workers
	names, err := scanner.New[string]().QueryAll(
		ctx, p.conn,
		`select "name" from "knowledge_base" where "project_id" = $1`,
		projectId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	for _, n := range names {
		if _, ok := kb[n]; !ok {
			kb[n] = []string{}
		}
	}
	return kb, nil
}

package postgres

import (
	"context"

	"github.com/google/uuid"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	"github.com/opst/knitlabel/pkg/domain"
	klabel "github.com/opst/knitlabel/pkg/domain/label/db"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type pgLabel struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) klabel.LabelInterface {
	return &pgLabel{conn: conn}
}

func (l *pgLabel) InTask(ctx context.Context, projectId string, taskId string) (map[string]string, error) {
	type label struct {
		Id   string
		Name string
	}
	labels, err := scanner.New[label]().QueryAll(
		ctx, l.conn,
		`
		select "id"::text as "id", "name" from "labeling_task_label"
		where "project_id" = $1 and "labeling_task_id" = $2
		`,
		projectId, taskId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	byName := make(map[string]string, len(labels))
	for _, lb := range labels {
		byName[lb.Name] = lb.Id
	}
	return byName, nil
}

func (l *pgLabel) ReplaceBySource(ctx context.Context, projectId string, sourceId string, associations []domain.LabelAssociation) (int, error) {
	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	// tokens are removed by cascade.
	ctag, err := tx.Exec(
		ctx,
		`
		delete from "record_label_association"
		where "project_id" = $1 and "source_id" = $2
		`,
		projectId, sourceId,
	)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	deleted := int(ctag.RowsAffected())

	if len(associations) != 0 {
		n := len(associations)
		ids := make([]string, 0, n)
		recordIds := make([]string, 0, n)
		labelIds := make([]string, 0, n)
		sourceTypes := make([]string, 0, n)
		shapes := make([]string, 0, n)
		confidences := make([]float64, 0, n)
		createdBy := make([]string, 0, n)

		tokenParents := []string{}
		tokenIds := []string{}
		tokenIndexes := []int32{}
		tokenBeginnings := []bool{}

		for _, a := range associations {
			id := a.Id
			if id == "" {
				id = uuid.NewString()
			}
			ids = append(ids, id)
			recordIds = append(recordIds, a.RecordId)
			labelIds = append(labelIds, a.LabelId)
			sourceTypes = append(sourceTypes, string(a.SourceType))
			shapes = append(shapes, string(a.Shape))
			confidences = append(confidences, a.Confidence)
			createdBy = append(createdBy, a.CreatedBy)

			for _, tok := range a.Tokens {
				tokenParents = append(tokenParents, id)
				tokenIds = append(tokenIds, uuid.NewString())
				tokenIndexes = append(tokenIndexes, int32(tok.Index))
				tokenBeginnings = append(tokenBeginnings, tok.Beginning)
			}
		}

		if _, err := tx.Exec(
			ctx,
			`
			insert into "record_label_association" (
				"id", "project_id", "source_id", "record_id", "labeling_task_label_id",
				"source_type", "return_type", "confidence", "created_by"
			)
			select
				"a"."id", $1, $2, "a"."record_id", "a"."label_id",
				"a"."source_type", "a"."return_type", "a"."confidence", "a"."created_by"
			from unnest(
				$3::uuid[], $4::uuid[], $5::uuid[], $6::varchar[], $7::varchar[],
				$8::double precision[], $9::varchar[]
			) as "a"(
				"id", "record_id", "label_id", "source_type", "return_type",
				"confidence", "created_by"
			)
			`,
			projectId, sourceId,
			ids, recordIds, labelIds, sourceTypes, shapes, confidences, createdBy,
		); err != nil {
			return 0, xe.Wrap(err)
		}

		if len(tokenIds) != 0 {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "record_label_association_token" (
					"id", "project_id", "record_label_association_id",
					"token_index", "is_beginning_token"
				)
				select "t"."id", $1, "t"."parent", "t"."index", "t"."beginning"
				from unnest($2::uuid[], $3::uuid[], $4::int[], $5::boolean[])
					as "t"("id", "parent", "index", "beginning")
				`,
				projectId, tokenIds, tokenParents, tokenIndexes, tokenBeginnings,
			); err != nil {
				return 0, xe.Wrap(err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, xe.Wrap(err)
	}
	return deleted, nil
}

func (l *pgLabel) ManualRecords(ctx context.Context, projectId string, taskId string) ([]string, error) {
	ids, err := scanner.New[string]().QueryAll(
		ctx, l.conn,
		`
		select distinct "rla"."record_id"::text as "record_id"
		from "record_label_association" as "rla"
		inner join "labeling_task_label" as "ltl"
			on "ltl"."id" = "rla"."labeling_task_label_id"
		where
			"rla"."project_id" = $1
			and "ltl"."labeling_task_id" = $2
			and "rla"."source_type" = $3
		order by "record_id"
		`,
		projectId, taskId, string(domain.LabeledManually),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return ids, nil
}

func (l *pgLabel) ManualClassification(ctx context.Context, projectId string, taskId string) (map[string]string, error) {
	type manual struct {
		RecordId string
		Name     string
	}
	rows, err := scanner.New[manual]().QueryAll(
		ctx, l.conn,
		`
		select "rla"."record_id"::text as "record_id", "ltl"."name"
		from "record_label_association" as "rla"
		inner join "labeling_task_label" as "ltl"
			on "ltl"."id" = "rla"."labeling_task_label_id"
		where
			"rla"."project_id" = $1
			and "ltl"."labeling_task_id" = $2
			and "rla"."source_type" = $3
			and "rla"."return_type" = $4
		order by "rla"."created_at"
		`,
		projectId, taskId, string(domain.LabeledManually), string(domain.WholeRecord),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	result := make(map[string]string, len(rows))
	for _, r := range rows {
		result[r.RecordId] = r.Name
	}
	return result, nil
}

func (l *pgLabel) ManualExtraction(ctx context.Context, projectId string, taskId string) (map[string][]domain.ManualSpan, error) {
	type span struct {
		RecordId string
		Name     string
		Start    int
		End      int
	}
	rows, err := scanner.New[span]().QueryAll(
		ctx, l.conn,
		`
		select
			"rla"."record_id"::text as "record_id",
			"ltl"."name",
			min("rlat"."token_index")::int as "start",
			(max("rlat"."token_index") + 1)::int as "end"
		from "record_label_association" as "rla"
		inner join "labeling_task_label" as "ltl"
			on "ltl"."id" = "rla"."labeling_task_label_id"
		inner join "record_label_association_token" as "rlat"
			on "rlat"."record_label_association_id" = "rla"."id"
		where
			"rla"."project_id" = $1
			and "ltl"."labeling_task_id" = $2
			and "rla"."source_type" = $3
			and "rla"."return_type" = $4
		group by "rla"."id", "rla"."record_id", "ltl"."name"
		order by "record_id", "start"
		`,
		projectId, taskId, string(domain.LabeledManually), string(domain.SpanList),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	result := map[string][]domain.ManualSpan{}
	for _, r := range rows {
		result[r.RecordId] = append(result[r.RecordId], domain.ManualSpan{
			Label: r.Name, Start: r.Start, End: r.End,
		})
	}
	return result, nil
}

package postgres

import (
	"context"

	"github.com/google/uuid"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	"github.com/opst/knitlabel/pkg/domain"
	kstatistics "github.com/opst/knitlabel/pkg/domain/statistics/db"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type pgStatistics struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) kstatistics.StatisticsInterface {
	return &pgStatistics{conn: conn}
}

type statisticsRow struct {
	SourceId       string
	LabelId        string
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	RecordCoverage int
	TotalHits      int
}

// Statistics are measured per label of the source's task.
//
// A hit of the source on a record is positive when a manual label on the record is same.
// Span sources are compared by labels, not by token positions.
const recomputeQuery = `
with
"src" as (
	select "id", "project_id", "labeling_task_id"
	from "information_source" where "project_id" = $1 and "id" = $2
),
"labels" as (
	select "ltl"."id" from "labeling_task_label" as "ltl"
	inner join "src" on "src"."labeling_task_id" = "ltl"."labeling_task_id"
),
"excluded" as (
	select "record_id" from "information_source_statistics_exclusion"
	where "source_id" = $2
),
"manual" as (
	select distinct "rla"."record_id", "rla"."labeling_task_label_id" as "label_id"
	from "record_label_association" as "rla"
	where
		"rla"."project_id" = $1 and "rla"."source_type" = 'MANUAL'
		and "rla"."labeling_task_label_id" in (select "id" from "labels")
		and "rla"."record_id" not in (select "record_id" from "excluded")
),
"hits" as (
	select "rla"."record_id", "rla"."labeling_task_label_id" as "label_id"
	from "record_label_association" as "rla"
	where
		"rla"."project_id" = $1 and "rla"."source_id" = $2
		and "rla"."record_id" not in (select "record_id" from "excluded")
),
"distinct_hits" as (
	select distinct "record_id", "label_id" from "hits"
)
select
	$2::text as "source_id",
	"labels"."id"::text as "label_id",
	(
		select count(*) from "distinct_hits" as "h"
		inner join "manual" as "m" using ("record_id", "label_id")
		where "h"."label_id" = "labels"."id"
	)::int as "true_positives",
	(
		select count(*) from "distinct_hits" as "h"
		where "h"."label_id" = "labels"."id"
		and exists (select 1 from "manual" as "m" where "m"."record_id" = "h"."record_id")
		and not exists (
			select 1 from "manual" as "m"
			where "m"."record_id" = "h"."record_id" and "m"."label_id" = "h"."label_id"
		)
	)::int as "false_positives",
	(
		select count(*) from "manual" as "m"
		where "m"."label_id" = "labels"."id"
		and not exists (
			select 1 from "distinct_hits" as "h"
			where "h"."record_id" = "m"."record_id" and "h"."label_id" = "m"."label_id"
		)
	)::int as "false_negatives",
	(
		select count(*) from "distinct_hits" as "h" where "h"."label_id" = "labels"."id"
	)::int as "record_coverage",
	(
		select count(*) from "hits" as "h" where "h"."label_id" = "labels"."id"
	)::int as "total_hits"
from "labels"
`

func (s *pgStatistics) Recompute(ctx context.Context, projectId string, sourceId string) ([]domain.SourceStatistics, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	rows, err := scanner.New[statisticsRow]().QueryAll(ctx, tx, recomputeQuery, projectId, sourceId)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	if _, err := tx.Exec(
		ctx,
		`delete from "information_source_statistics" where "project_id" = $1 and "source_id" = $2`,
		projectId, sourceId,
	); err != nil {
		return nil, xe.Wrap(err)
	}

	stats := make([]domain.SourceStatistics, 0, len(rows))
	for _, r := range rows {
		if _, err := tx.Exec(
			ctx,
			`
			insert into "information_source_statistics" (
				"id", "project_id", "source_id", "labeling_task_label_id",
				"true_positives", "false_positives", "false_negatives",
				"record_coverage", "total_hits"
			) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`,
			uuid.NewString(), projectId, sourceId, r.LabelId,
			r.TruePositives, r.FalsePositives, r.FalseNegatives,
			r.RecordCoverage, r.TotalHits,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		stats = append(stats, domain.SourceStatistics(r))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xe.Wrap(err)
	}
	return stats, nil
}

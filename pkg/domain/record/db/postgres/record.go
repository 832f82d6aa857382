package postgres

import (
	"context"

	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	krecord "github.com/opst/knitlabel/pkg/domain/record/db"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type pgRecord struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) krecord.RecordInterface {
	return &pgRecord{conn: conn}
}

func (r *pgRecord) Existing(ctx context.Context, projectId string, recordIds []string) (map[string]struct{}, error) {
	found := map[string]struct{}{}
	if len(recordIds) == 0 {
		return found, nil
	}

	// record ids from workers are not trusted to be uuid.
	ids, err := scanner.New[string]().QueryAll(
		ctx, r.conn,
		`
		select "id"::text from "record"
		where "project_id" = $1 and "id"::text = any($2::text[])
		`,
		projectId, recordIds,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	for _, id := range ids {
		found[id] = struct{}{}
	}
	return found, nil
}

func (r *pgRecord) MaxToken(ctx context.Context, projectId string, taskId string, recordIds []string) (map[string]int, error) {
	type maxToken struct {
		RecordId string
		MaxToken int
	}

	result := map[string]int{}
	if len(recordIds) == 0 {
		return result, nil
	}

	rows, err := scanner.New[maxToken]().QueryAll(
		ctx, r.conn,
		`
		select
			"rats"."record_id"::text as "record_id",
			"rats"."num_token"::int as "max_token"
		from "record_attribute_token_statistics" as "rats"
		inner join "labeling_task" as "lt"
			on "lt"."attribute_id" = "rats"."attribute_id"
		where
			"rats"."project_id" = $1
			and "lt"."id" = $2
			and "rats"."record_id"::text = any($3::text[])
		`,
		projectId, taskId, recordIds,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	for _, row := range rows {
		result[row.RecordId] = row.MaxToken
	}
	return result, nil
}

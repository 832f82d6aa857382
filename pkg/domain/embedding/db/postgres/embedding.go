package postgres

import (
	"context"

	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	"github.com/opst/knitlabel/pkg/domain"
	kembedding "github.com/opst/knitlabel/pkg/domain/embedding/db"
	pgerrors "github.com/opst/knitlabel/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type pgEmbedding struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) kembedding.EmbeddingInterface {
	return &pgEmbedding{conn: conn}
}

type embeddingRow struct {
	Id        string
	ProjectId string
	Name      string
	Type      string
	State     string
}

func (e *pgEmbedding) ByName(ctx context.Context, projectId string, name string) (domain.Embedding, error) {
	rows, err := scanner.New[embeddingRow]().QueryAll(
		ctx, e.conn,
		`
		select
			"id"::text as "id", "project_id"::text as "project_id",
			"name", "type", "state"
		from "embedding"
		where "project_id" = $1 and "name" = $2
		`,
		projectId, name,
	)
	if err != nil {
		return domain.Embedding{}, xe.Wrap(err)
	}
	switch len(rows) {
	case 0:
		return domain.Embedding{}, xe.Wrap(pgerrors.Missing{Table: "embedding", Identity: "name=" + name})
	case 1:
	default:
		return domain.Embedding{}, xe.Wrap(pgerrors.TooMuch{
			Table: "embedding", Identity: "name=" + name, Expected: 1,
		})
	}

	row := rows[0]
	typ, err := domain.AsEmbeddingType(row.Type)
	if err != nil {
		return domain.Embedding{}, xe.Wrap(err)
	}
	return domain.Embedding{
		Id:        row.Id,
		ProjectId: row.ProjectId,
		Name:      row.Name,
		Type:      typ,
		State:     row.State,
	}, nil
}

func (e *pgEmbedding) RecordIds(ctx context.Context, projectId string) ([]string, error) {
	ids, err := scanner.New[string]().QueryAll(
		ctx, e.conn,
		`
		select distinct "record_id"::text as "record_id"
		from "embedding_tensor"
		where "project_id" = $1
		order by "record_id"
		`,
		projectId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return ids, nil
}

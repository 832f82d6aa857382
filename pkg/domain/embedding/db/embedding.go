package db

import (
	"context"

	"github.com/opst/knitlabel/pkg/domain"
)

type EmbeddingInterface interface {
	// ByName returns an embedding of the project.
	//
	// Returns
	//
	// - error: ErrMissing when there are no embeddings with the name.
	ByName(ctx context.Context, projectId string, name string) (domain.Embedding, error)

	// RecordIds returns ids of records in the project which have embeddings.
	RecordIds(ctx context.Context, projectId string) ([]string, error)
}

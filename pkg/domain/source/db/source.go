package db

import (
	"context"

	"github.com/opst/knitlabel/pkg/domain"
)

type SourceInterface interface {
	// Get an information source.
	//
	// Returns
	//
	// - error: ErrMissing when the source is not found in the project.
	Get(ctx context.Context, projectId string, sourceId string) (domain.InformationSource, error)

	// Selected returns sources of the project which are selected.
	Selected(ctx context.Context, projectId string) ([]domain.InformationSource, error)

	// ReplaceExclusions replaces statistics exclusions of the source with the records.
	ReplaceExclusions(ctx context.Context, projectId string, sourceId string, recordIds []string) error

	// Exclusions returns record ids excluded from statistics of the source.
	Exclusions(ctx context.Context, sourceId string) ([]string, error)
}

package db

import (
	"context"

	"github.com/opst/knitlabel/pkg/domain"
)

type LabelInterface interface {
	// InTask returns labels of the labeling task, name to label id.
	InTask(ctx context.Context, projectId string, taskId string) (map[string]string, error)

	// ReplaceBySource deletes all label associations produced by the source,
	// and then inserts given associations, in one transaction.
	//
	// Passing no associations just clears results of the source.
	//
	// Returns
	//
	// - int: the number of deleted associations
	//
	// - error
	ReplaceBySource(ctx context.Context, projectId string, sourceId string, associations []domain.LabelAssociation) (int, error)

	// ManualRecords returns ids of records labeled manually in the task.
	//
	// The order is stable for the same data: ascending by record id.
	ManualRecords(ctx context.Context, projectId string, taskId string) ([]string, error)

	// ManualClassification returns manual labels in a classification task, record id to label name.
	ManualClassification(ctx context.Context, projectId string, taskId string) (map[string]string, error)

	// ManualExtraction returns manual spans in an extraction task, record id to spans.
	ManualExtraction(ctx context.Context, projectId string, taskId string) (map[string][]domain.ManualSpan, error)
}

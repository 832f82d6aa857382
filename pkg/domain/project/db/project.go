package db

import (
	"context"

	"github.com/opst/knitlabel/pkg/domain"
)

type ProjectInterface interface {
	// Get a project.
	//
	// Returns
	//
	// - error: ErrMissing when the project is not found.
	Get(ctx context.Context, projectId string) (domain.Project, error)

	// Task returns a labeling task of the project.
	//
	// Returns
	//
	// - error: ErrMissing when the task is not found in the project.
	Task(ctx context.Context, projectId string, taskId string) (domain.LabelingTask, error)

	// TokenizationProgress returns progress of the latest tokenization of the project, in [0, 1].
	//
	// When the project has never been tokenized, it is 0.
	TokenizationProgress(ctx context.Context, projectId string) (float64, error)

	// KnowledgeBase returns knowledge bases of the project, name to terms.
	//
	// Blacklisted terms are not included.
	KnowledgeBase(ctx context.Context, projectId string) (domain.KnowledgeBase, error)
}

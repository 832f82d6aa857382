package db

import "context"

type RecordInterface interface {
	// Existing returns the subset of recordIds which exist in the project.
	Existing(ctx context.Context, projectId string, recordIds []string) (map[string]struct{}, error)

	// MaxToken returns the upper bound of token indexes of records,
	// on the attribute which the labeling task targets.
	//
	// Spans end exclusively, so it is the number of tokens: a span may end there, but no token is at it.
	//
	// Records without token statistics (e.g. deleted records) are absent from the result.
	MaxToken(ctx context.Context, projectId string, taskId string, recordIds []string) (map[string]int, error)
}

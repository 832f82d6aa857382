package db

import (
	"context"
	"time"

	"github.com/opst/knitlabel/pkg/domain"
)

type PayloadInterface interface {
	// Count payloads which have been created for the source.
	//
	// Deleted payloads are not counted.
	Count(ctx context.Context, projectId string, sourceId string) (int, error)

	// create a new payload in CREATED state.
	//
	// Args
	//
	// - context.Context
	//
	// - domain.PayloadSpec: what to be created.
	//
	// Returns
	//
	// - domain.Payload: created payload, with id and timestamps.
	//
	// - error
	New(ctx context.Context, spec domain.PayloadSpec) (domain.Payload, error)

	// Get a payload.
	//
	// Returns
	//
	// - error: ErrMissing when the payload is not found in the project.
	Get(ctx context.Context, projectId string, payloadId string) (domain.Payload, error)

	// SetStarted records when the worker of the payload is launched.
	SetStarted(ctx context.Context, payloadId string, at time.Time) error

	// SetLogs overwrites the logs of the payload.
	//
	// When finishedAt is not nil, it is recorded as the time the worker stopped.
	SetLogs(ctx context.Context, payloadId string, logs []string, finishedAt *time.Time) error

	// Transit changes the state of the payload.
	//
	// Returns
	//
	// - error: ErrInvalidPayloadStateChanging when the payload is not CREATED
	// or newState is not terminal, ErrMissing when the payload is not found.
	Transit(ctx context.Context, payloadId string, newState domain.PayloadState) error
}

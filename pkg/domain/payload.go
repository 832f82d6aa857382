package domain

import (
	"fmt"
	"time"
)

type PayloadState string

const (
	// The payload is created. It may be in preparation or running.
	Created PayloadState = "CREATED"

	// The payload has been executed and its results are written.
	Finished PayloadState = "FINISHED"

	// The payload has been stopped in failure.
	Failed PayloadState = "FAILED"
)

func (s PayloadState) String() string {
	return string(s)
}

func AsPayloadState(s string) (PayloadState, error) {
	switch s {
	case string(Created):
		return Created, nil
	case string(Finished):
		return Finished, nil
	case string(Failed):
		return Failed, nil
	default:
		return "", fmt.Errorf("'%s' is not PayloadState", s)
	}
}

// Terminal tells the state is final. Payloads in a terminal state are never revived.
func (s PayloadState) Terminal() bool {
	switch s {
	case Finished, Failed:
		return true
	default:
		return false
	}
}

// CanTransitTo tells whether a payload in s can be changed into next.
func (s PayloadState) CanTransitTo(next PayloadState) bool {
	return s == Created && next.Terminal()
}

// Payload is one execution attempt of an InformationSource.
type Payload struct {
	Id        string
	ProjectId string
	SourceId  string

	// 1 for the first payload of the source, and increasing.
	Iteration int

	State    PayloadState
	Progress float64

	// snapshot of the source code at creation
	SourceCode string

	// user-facing log lines, "YYYY-MM-DDTHH:MM:SS message" or worker lines.
	Logs []string

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	CreatedBy  string
}

// PayloadSpec is what is needed to create a new Payload.
type PayloadSpec struct {
	ProjectId  string
	SourceId   string
	Iteration  int
	SourceCode string
	CreatedBy  string
}

// Package k8serrors classifies failures of operations on Kubernetes resources.
//
// Check them with errors.Is.
package k8serrors

import (
	"errors"
	"fmt"

	xe "github.com/opst/knitlabel/pkg/errors"
)

var (
	// Requested resource (job, pod) does not exist.
	ErrMissing = errors.New("k8s resource is missing")

	// A resource with the same name is already there.
	ErrConflict = errors.New("k8s resource is conflicting")
)

type resourceError struct {
	kind    error
	subject string
	cause   error
}

func (e *resourceError) Error() string {
	msg := e.kind.Error()
	if e.subject != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.subject)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s / caused by: %s", msg, e.cause)
	}
	return msg
}

func (e *resourceError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Missing returns an error meaning subject is not found. cause may be nil.
func Missing(subject string, cause error) error {
	return xe.WrapAsOuter(&resourceError{kind: ErrMissing, subject: subject, cause: cause}, 1)
}

// Conflict returns an error meaning subject already exists. cause may be nil.
func Conflict(subject string, cause error) error {
	return xe.WrapAsOuter(&resourceError{kind: ErrConflict, subject: subject, cause: cause}, 1)
}

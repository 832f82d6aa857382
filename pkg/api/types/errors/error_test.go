package errors_test

import (
	"errors"
	"net/http"
	"testing"

	apierr "github.com/opst/knitlabel/pkg/api/types/errors"
	"github.com/opst/knitlabel/pkg/domain"
	pgerrors "github.com/opst/knitlabel/pkg/domain/errors/dberrors/postgres"
)

func TestFromDomain(t *testing.T) {
	for name, testcase := range map[string]struct {
		err  error
		code int
	}{
		"ErrMissing is Not Found": {
			err: domain.ErrMissing, code: http.StatusNotFound,
		},
		"missing row is Not Found": {
			err:  pgerrors.Missing{Table: "payload", Identity: "payload-1"},
			code: http.StatusNotFound,
		},
		"forbidden state change is Conflict": {
			err:  domain.NewErrInvalidPayloadStateChanging(domain.Finished, domain.Failed),
			code: http.StatusConflict,
		},
		"others are Internal Server Error": {
			err: errors.New("fake error"), code: http.StatusInternalServerError,
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual := apierr.FromDomain(testcase.err)
			if actual.Code != testcase.code {
				t.Errorf("code: %d, want %d", actual.Code, testcase.code)
			}
			if !errors.Is(actual.Internal, testcase.err) {
				t.Errorf("cause is lost: %v", actual.Internal)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("fake error")
	err := apierr.BadRequest("body should be json", cause)

	if err.Code != http.StatusBadRequest {
		t.Errorf("code: %d", err.Code)
	}
	msg, ok := err.Message.(apierr.ErrorMessage)
	if !ok {
		t.Fatalf("message: %T", err.Message)
	}
	if msg.Reason != "bad request" || msg.Advice != "body should be json" {
		t.Errorf("message: %+v", msg)
	}
	if !errors.Is(msg, cause) {
		t.Errorf("cause is lost")
	}
}

package postgres_test

import (
	"errors"
	"testing"

	"github.com/opst/knitlabel/pkg/domain"
	. "github.com/opst/knitlabel/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opst/knitlabel/pkg/errors"
)

func TestErrors(t *testing.T) {
	t.Run("Missing is ErrMissing even if wrapped", func(t *testing.T) {
		err := xe.Wrap(Missing{Table: "information_source_payload", Identity: "p-1"})
		if !errors.Is(err, domain.ErrMissing) {
			t.Errorf("not ErrMissing: %+v", err)
		}
		if errors.Is(err, domain.ErrTooMuch) {
			t.Errorf("unexpectedly ErrTooMuch: %+v", err)
		}
		if want := "p-1 is not found in information_source_payload"; (Missing{Table: "information_source_payload", Identity: "p-1"}).Error() != want {
			t.Errorf("message: want %s", want)
		}
	})

	t.Run("TooMuch is ErrTooMuch", func(t *testing.T) {
		err := xe.Wrap(TooMuch{Table: "embedding", Identity: "name=e", Expected: 1})
		if !errors.Is(err, domain.ErrTooMuch) {
			t.Errorf("not ErrTooMuch: %+v", err)
		}
	})
}

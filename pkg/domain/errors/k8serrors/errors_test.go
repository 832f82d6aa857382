package k8serrors_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/opst/knitlabel/pkg/domain/errors/k8serrors"
)

func TestResourceErrors(t *testing.T) {
	cause := errors.New("fake error")

	t.Run("Missing is ErrMissing, and keeps its cause", func(t *testing.T) {
		err := k8serrors.Missing("job payload-1", cause)
		if !errors.Is(err, k8serrors.ErrMissing) {
			t.Errorf("not ErrMissing: %v", err)
		}
		if errors.Is(err, k8serrors.ErrConflict) {
			t.Errorf("unexpectedly ErrConflict: %v", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("cause is lost: %v", err)
		}
		if msg := err.Error(); !strings.Contains(msg, "job payload-1") || !strings.Contains(msg, "fake error") {
			t.Errorf("message: %s", msg)
		}
	})

	t.Run("Conflict is ErrConflict, even without cause", func(t *testing.T) {
		err := k8serrors.Conflict("job payload-1", nil)
		if !errors.Is(err, k8serrors.ErrConflict) {
			t.Errorf("not ErrConflict: %v", err)
		}
		if errors.Is(err, k8serrors.ErrMissing) {
			t.Errorf("unexpectedly ErrMissing: %v", err)
		}
	})
}

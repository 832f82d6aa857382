package try_test

import (
	"errors"
	"testing"

	"github.com/opst/knitlabel/pkg/utils/try"
)

type fataler struct {
	fatal [][]any
}

func (f *fataler) Fatal(args ...any) {
	f.fatal = append(f.fatal, args)
}

type helperfataler struct {
	fataler

	helper uint
}

func (hf *helperfataler) Helper() {
	hf.helper += 1
}

func TestTry(t *testing.T) {
	t.Run("when it does not have error,", func(t *testing.T) {
		expected := 42
		testee := try.To(expected, nil)

		t.Run("OrFatal returns the value and do not call Fatal", func(t *testing.T) {
			f := &fataler{}
			if actual := testee.OrFatal(f); actual != expected {
				t.Errorf("unexpected result: (actual, expected) = (%d, %d)", actual, expected)
			}
			if len(f.fatal) != 0 {
				t.Errorf("Fatal is called: %v", f.fatal)
			}
		})

		t.Run("OrDefault returns non-default value", func(t *testing.T) {
			if ret := testee.OrDefault(expected + 1); ret != expected {
				t.Errorf("unmatch: (actual, expected) = (%d, %d)", ret, expected)
			}
		})
	})

	t.Run("when it has error,", func(t *testing.T) {
		expected := errors.New("fake error")
		testee := try.To(42, expected)

		t.Run("OrFatal calls Helper and Fatal", func(t *testing.T) {
			f := &helperfataler{}
			testee.OrFatal(f)
			if f.helper != 1 {
				t.Errorf("Helper is called %d times", f.helper)
			}
			if len(f.fatal) != 1 || f.fatal[0][0] != expected {
				t.Errorf("Fatal is not called with the error: %v", f.fatal)
			}
		})

		t.Run("OrDefault returns default", func(t *testing.T) {
			if ret := testee.OrDefault(7); ret != 7 {
				t.Errorf("unmatch: (actual, expected) = (%d, %d)", ret, 7)
			}
		})

		t.Run("Get returns the error", func(t *testing.T) {
			if _, err := testee.Get(); !errors.Is(err, expected) {
				t.Errorf("unmatch: (actual, expected) = (%v, %v)", err, expected)
			}
		})
	})
}

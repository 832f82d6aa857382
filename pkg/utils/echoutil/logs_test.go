package echoutil_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/utils/echoutil"
)

func TestLevel(t *testing.T) {
	for _, testcase := range []struct {
		name string
		lvl  log.Lvl
		ok   bool
	}{
		{name: "debug", lvl: log.DEBUG, ok: true},
		{name: "INFO", lvl: log.INFO, ok: true},
		{name: "warn", lvl: log.WARN, ok: true},
		{name: "", lvl: log.WARN, ok: true},
		{name: "error", lvl: log.ERROR, ok: true},
		{name: "off", lvl: log.OFF, ok: true},
		{name: "verbose", lvl: log.WARN, ok: false},
	} {
		t.Run("level "+testcase.name, func(t *testing.T) {
			lvl, ok := echoutil.Level(testcase.name)
			if lvl != testcase.lvl || ok != testcase.ok {
				t.Errorf("(%v, %v), want (%v, %v)", lvl, ok, testcase.lvl, testcase.ok)
			}
		})
	}
}

func TestLogHandlerFunc(t *testing.T) {
	theory := func(handlerErr error, expected string) func(*testing.T) {
		return func(t *testing.T) {
			e := echo.New()
			buf := new(bytes.Buffer)
			e.Logger.SetOutput(buf)
			e.Logger.SetLevel(log.INFO)

			req := httptest.NewRequest(http.MethodGet, "/api/projects/", nil)
			resp := httptest.NewRecorder()
			c := e.NewContext(req, resp)

			err := echoutil.LogHandlerFunc(func(c echo.Context) error {
				if handlerErr != nil {
					return handlerErr
				}
				return c.NoContent(http.StatusNoContent)
			})(c)

			if !errors.Is(err, handlerErr) {
				t.Errorf("error is not passed through: %v", err)
			}
			out := buf.String()
			if !strings.Contains(out, "< request @") {
				t.Errorf("request is not logged: %s", out)
			}
			if !strings.Contains(out, expected) {
				t.Errorf("response is not logged: %s", out)
			}
		}
	}

	t.Run("it logs status of the response", theory(nil, "status = 204"))
	t.Run("it logs error of the handler", theory(errors.New("fake error"), "error = fake error"))
}

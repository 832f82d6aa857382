package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/knitlabel/cmd/labeld/auth"
	"github.com/opst/knitlabel/cmd/labeld/handlers"
	httptestutil "github.com/opst/knitlabel/internal/testutils/http"
	apipayloads "github.com/opst/knitlabel/pkg/api/types/payloads"
	"github.com/opst/knitlabel/pkg/domain"
	pgerrors "github.com/opst/knitlabel/pkg/domain/errors/dberrors/postgres"
	dbmock "github.com/opst/knitlabel/pkg/domain/labeler/db/mock"
	schedulermock "github.com/opst/knitlabel/pkg/payload/scheduler/mock"
	"github.com/opst/knitlabel/pkg/utils/cmp"
)

var createdAt = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func payload(id string, sourceId string, state domain.PayloadState) domain.Payload {
	return domain.Payload{
		Id: id, ProjectId: "project-1", SourceId: sourceId, Iteration: 1,
		State: state, CreatedAt: createdAt, CreatedBy: "user-1",
		Logs: []string{},
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httperr *echo.HTTPError
	if !errors.As(err, &httperr) {
		t.Fatalf("error is not echo.HTTPError: %+v", err)
	}
	return httperr.Code
}

func TestCreatePayloadHandler(t *testing.T) {
	type When struct {
		body     string
		payload  domain.Payload
		errorGet error
	}
	type Then struct {
		asynchronous bool
		code         int
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			s := schedulermock.New()
			s.Impl.CreatePayload = func(context.Context, string, string, string, bool) (domain.Payload, error) {
				return when.payload, when.errorGet
			}

			e := echo.New()
			c, resp := httptestutil.Post(
				e, "/api/projects/project-1/sources/source-1/payloads", strings.NewReader(when.body),
				httptestutil.ContentType("application/json"),
			)
			c.SetPath("/api/projects/:project/sources/:source/payloads")
			c.SetParamNames("project", "source")
			c.SetParamValues("project-1", "source-1")
			auth.WithUser(c, "user-1")

			err := handlers.CreatePayloadHandler(s, "project", "source")(c)

			if then.code != http.StatusCreated {
				if code := statusOf(t, err); code != then.code {
					t.Errorf("status code: %d, want %d", code, then.code)
				}
			} else {
				if err != nil {
					t.Fatal(err)
				}
				if resp.Code != http.StatusCreated {
					t.Errorf("status code: %d", resp.Code)
				}
				actual := apipayloads.Detail{}
				if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
					t.Fatal(err)
				}
				expected := apipayloads.ComposeDetail(when.payload)
				if !actual.Equal(&expected) {
					t.Errorf("body:\n%+v\nwant\n%+v", actual, expected)
				}
			}

			if then.code == http.StatusBadRequest {
				if len(s.Calls.CreatePayload) != 0 {
					t.Errorf("scheduler is called: %+v", s.Calls.CreatePayload)
				}
				return
			}
			if !cmp.SliceEq(s.Calls.CreatePayload, []schedulermock.CreatePayloadArgs{{
				ProjectId: "project-1", SourceId: "source-1", UserId: "user-1", Asynchronous: then.asynchronous,
			}}) {
				t.Errorf("calls: %+v", s.Calls.CreatePayload)
			}
		}
	}

	t.Run("when the body is empty, the payload runs asynchronously", theory(
		When{payload: payload("payload-1", "source-1", domain.Created)},
		Then{asynchronous: true, code: http.StatusCreated},
	))
	t.Run("when asynchronous is false, the payload runs synchronously", theory(
		When{body: `{"asynchronous": false}`, payload: payload("payload-1", "source-1", domain.Finished)},
		Then{asynchronous: false, code: http.StatusCreated},
	))
	t.Run("when the body is broken, it responds Bad Request", theory(
		When{body: `{"asynchronous": `},
		Then{code: http.StatusBadRequest},
	))
	t.Run("when the source is missing, it responds Not Found", theory(
		When{errorGet: pgerrors.Missing{Table: "information_source", Identity: "source-1"}},
		Then{asynchronous: true, code: http.StatusNotFound},
	))
	t.Run("when the scheduler fails, it responds Internal Server Error", theory(
		When{errorGet: errors.New("fake error")},
		Then{asynchronous: true, code: http.StatusInternalServerError},
	))
}

func TestTrainAllHandler(t *testing.T) {
	t.Run("it creates payloads synchronously by default", func(t *testing.T) {
		s := schedulermock.New()
		created := []domain.Payload{
			payload("payload-1", "source-1", domain.Finished),
			payload("payload-2", "source-2", domain.Failed),
		}
		s.Impl.TrainAllModels = func(context.Context, string, string, bool) ([]domain.Payload, error) {
			return created, nil
		}

		e := echo.New()
		c, resp := httptestutil.Post(e, "/api/projects/project-1/train", strings.NewReader(""))
		c.SetPath("/api/projects/:project/train")
		c.SetParamNames("project")
		c.SetParamValues("project-1")
		auth.WithUser(c, "user-1")

		if err := handlers.TrainAllHandler(s, "project")(c); err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusCreated {
			t.Errorf("status code: %d", resp.Code)
		}

		actual := []apipayloads.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		expected := []apipayloads.Detail{
			apipayloads.ComposeDetail(created[0]), apipayloads.ComposeDetail(created[1]),
		}
		if !cmp.SliceEqWith(actual, expected, func(a, b apipayloads.Detail) bool { return a.Equal(&b) }) {
			t.Errorf("body: %+v", actual)
		}
		if !cmp.SliceEq(s.Calls.TrainAllModels, []schedulermock.TrainAllModelsArgs{{
			ProjectId: "project-1", UserId: "user-1", Asynchronous: false,
		}}) {
			t.Errorf("calls: %+v", s.Calls.TrainAllModels)
		}
	})

	t.Run("when no sources are selected, it responds empty list", func(t *testing.T) {
		s := schedulermock.New()
		s.Impl.TrainAllModels = func(context.Context, string, string, bool) ([]domain.Payload, error) {
			return nil, nil
		}

		e := echo.New()
		c, resp := httptestutil.Post(e, "/api/projects/project-1/train", strings.NewReader(`{"asynchronous": true}`))
		c.SetParamNames("project")
		c.SetParamValues("project-1")

		if err := handlers.TrainAllHandler(s, "project")(c); err != nil {
			t.Fatal(err)
		}
		if body := strings.TrimSpace(resp.Body.String()); body != "[]" {
			t.Errorf("body: %s", body)
		}
		if !s.Calls.TrainAllModels[0].Asynchronous {
			t.Errorf("calls: %+v", s.Calls.TrainAllModels)
		}
	})
}

func TestGetPayloadHandler(t *testing.T) {
	type When struct {
		payload  domain.Payload
		errorGet error
	}
	type Then struct {
		code int
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			session := dbmock.NewSession()
			session.Payload.Impl.Get = func(context.Context, string, string) (domain.Payload, error) {
				return when.payload, when.errorGet
			}

			e := echo.New()
			c, resp := httptestutil.Get(e, "/api/projects/project-1/payloads/payload-1")
			c.SetPath("/api/projects/:project/payloads/:payload")
			c.SetParamNames("project", "payload")
			c.SetParamValues("project-1", "payload-1")

			err := handlers.GetPayloadHandler(dbmock.Serving(session), "project", "payload")(c)

			if session.Closed != 1 {
				t.Errorf("session is closed %d times", session.Closed)
			}
			if calls := session.Payload.Calls.Get; calls.Times() != 1 ||
				calls[0].ProjectId != "project-1" || calls[0].PayloadId != "payload-1" {
				t.Errorf("calls: %+v", calls)
			}

			if then.code != http.StatusOK {
				if code := statusOf(t, err); code != then.code {
					t.Errorf("status code: %d, want %d", code, then.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			actual := apipayloads.Detail{}
			if err := json.Unmarshal(resp.Body.Bytes(), &actual); err != nil {
				t.Fatal(err)
			}
			expected := apipayloads.ComposeDetail(when.payload)
			if !actual.Equal(&expected) {
				t.Errorf("body:\n%+v\nwant\n%+v", actual, expected)
			}
		}
	}

	finished := payload("payload-1", "source-1", domain.Finished)
	finished.Logs = []string{"2024-05-06T07:08:09 Finished writing."}
	finishedAt := createdAt.Add(time.Minute)
	finished.FinishedAt = &finishedAt

	t.Run("it responds the payload", theory(
		When{payload: finished},
		Then{code: http.StatusOK},
	))
	t.Run("when the payload is missing, it responds Not Found", theory(
		When{errorGet: pgerrors.Missing{Table: "payload", Identity: "payload-1"}},
		Then{code: http.StatusNotFound},
	))
	t.Run("when the database fails, it responds Internal Server Error", theory(
		When{errorGet: errors.New("fake error")},
		Then{code: http.StatusInternalServerError},
	))
}

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/cmd/labeld/auth"
	httptestutil "github.com/opst/knitlabel/internal/testutils/http"
	"github.com/opst/knitlabel/pkg/domain"
	dbmock "github.com/opst/knitlabel/pkg/domain/labeler/db/mock"
	notificationmock "github.com/opst/knitlabel/pkg/notification/mock"
	"github.com/opst/knitlabel/pkg/payload/sample"
	samplemock "github.com/opst/knitlabel/pkg/payload/sample/mock"
	schedulermock "github.com/opst/knitlabel/pkg/payload/scheduler/mock"
	"github.com/opst/knitlabel/pkg/utils/try"
)

var key = []byte("0123456789abcdef0123456789abcdef")

func services() (Services, *schedulermock.Scheduler) {
	sched := schedulermock.New()
	sched.Impl.CreatePayload = func(_ context.Context, projectId, sourceId, userId string, _ bool) (domain.Payload, error) {
		return domain.Payload{
			Id: "payload-1", ProjectId: projectId, SourceId: sourceId, CreatedBy: userId,
			State: domain.Created, CreatedAt: time.Now(),
		}, nil
	}
	sched.Impl.TrainAllModels = func(context.Context, string, string, bool) ([]domain.Payload, error) {
		return []domain.Payload{}, nil
	}

	sampler := samplemock.New()
	sampler.Impl.RunSample = func(context.Context, string, string, string) (sample.Result, error) {
		return sample.Result{}, nil
	}

	session := dbmock.NewSession()
	session.Payload.Impl.Get = func(_ context.Context, projectId, payloadId string) (domain.Payload, error) {
		return domain.Payload{Id: payloadId, ProjectId: projectId, State: domain.Finished}, nil
	}
	session.Project.Impl.Get = func(_ context.Context, id string) (domain.Project, error) {
		return domain.Project{Id: id}, nil
	}

	return Services{
		Database:  dbmock.Serving(session),
		Scheduler: sched,
		Sampler:   sampler,
		Notifier:  notificationmock.NewNotifier(),
		Verifier:  auth.NewVerifier(key),
	}, sched
}

func TestBuildServer(t *testing.T) {
	type route struct {
		method string
		path   string
		body   string
		code   int
	}
	routes := []route{
		{http.MethodPost, "/api/projects/project-1/sources/source-1/payloads", "", http.StatusCreated},
		{http.MethodPost, "/api/projects/project-1/train", "", http.StatusCreated},
		{http.MethodGet, "/api/projects/project-1/payloads/payload-1", "", http.StatusOK},
		{http.MethodPost, "/api/projects/project-1/sources/source-1/sample", "", http.StatusOK},
		{http.MethodPost, "/api/projects/project-1/notifications", `{"message":"hi"}`, http.StatusOK},
	}

	serve := func(t *testing.T, r route, opts ...httptestutil.RequestOption) *httptest.ResponseRecorder {
		s, _ := services()
		e := BuildServer(s, "off")
		e.Logger.SetOutput(io.Discard)
		e.Logger.SetLevel(log.OFF)

		var body io.Reader
		if r.body != "" {
			body = strings.NewReader(r.body)
		}
		req := httptest.NewRequest(r.method, r.path, body)
		for _, opt := range opts {
			req = opt(req)
		}
		resp := httptest.NewRecorder()
		e.ServeHTTP(resp, req)
		return resp
	}

	for _, r := range routes {
		t.Run("with valid token, "+r.method+" "+r.path+" is served", func(t *testing.T) {
			token := try.To(auth.Sign(key, "user-1", time.Now().Add(time.Hour))).OrFatal(t)
			resp := serve(
				t, r,
				httptestutil.Bearer(token),
				httptestutil.ContentType("application/json"),
			)
			if resp.Code != r.code {
				t.Errorf("status code: %d, want %d (body: %s)", resp.Code, r.code, resp.Body.String())
			}
		})

		t.Run("without token, "+r.method+" "+r.path+" is unauthorized", func(t *testing.T) {
			resp := serve(t, r, httptestutil.ContentType("application/json"))
			if resp.Code != http.StatusUnauthorized {
				t.Errorf("status code: %d, want %d", resp.Code, http.StatusUnauthorized)
			}
		})
	}

	t.Run("the user of the token is passed to the scheduler", func(t *testing.T) {
		s, sched := services()
		e := BuildServer(s, "off")
		e.Logger.SetOutput(io.Discard)

		token := try.To(auth.Sign(key, "user-2", time.Now().Add(time.Hour))).OrFatal(t)
		req := httptest.NewRequest(http.MethodPost, "/api/projects/project-1/sources/source-1/payloads", nil)
		req = httptestutil.Bearer(token)(req)
		resp := httptest.NewRecorder()
		e.ServeHTTP(resp, req)

		if resp.Code != http.StatusCreated {
			t.Fatalf("status code: %d", resp.Code)
		}
		if len(sched.Calls.CreatePayload) != 1 || sched.Calls.CreatePayload[0].UserId != "user-2" {
			t.Errorf("calls: %+v", sched.Calls.CreatePayload)
		}
	})
}

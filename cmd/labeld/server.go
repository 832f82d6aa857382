package main

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/opst/knitlabel/cmd/labeld/auth"
	"github.com/opst/knitlabel/cmd/labeld/handlers"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	"github.com/opst/knitlabel/pkg/notification"
	"github.com/opst/knitlabel/pkg/payload/sample"
	"github.com/opst/knitlabel/pkg/payload/scheduler"
	"github.com/opst/knitlabel/pkg/utils/echoutil"
)

var API_ROOT = "/api"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

type Services struct {
	Database  kdb.Database
	Scheduler scheduler.Scheduler
	Sampler   sample.Sampler
	Notifier  notification.Notifier
	Verifier  *auth.Verifier
}

func BuildServer(s Services, loglevel string) *echo.Echo {
	e := echo.New()
	echoutil.SetLevel(e, loglevel)

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())
	e.Use(echoutil.LogHandlerFunc)

	g := e.Group("", s.Verifier.Middleware)

	g.POST(
		api("projects/:project/sources/:source/payloads"),
		handlers.CreatePayloadHandler(s.Scheduler, "project", "source"),
	)
	g.POST(
		api("projects/:project/train"),
		handlers.TrainAllHandler(s.Scheduler, "project"),
	)
	g.GET(
		api("projects/:project/payloads/:payload"),
		handlers.GetPayloadHandler(s.Database, "project", "payload"),
	)
	g.POST(
		api("projects/:project/sources/:source/sample"),
		handlers.SampleHandler(s.Sampler, "project", "source"),
	)
	g.POST(
		api("projects/:project/notifications"),
		handlers.CustomNotificationHandler(s.Database, s.Notifier, "project"),
	)

	return e
}

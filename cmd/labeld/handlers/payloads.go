package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/knitlabel/cmd/labeld/auth"
	apierr "github.com/opst/knitlabel/pkg/api/types/errors"
	apipayloads "github.com/opst/knitlabel/pkg/api/types/payloads"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	"github.com/opst/knitlabel/pkg/payload/scheduler"
)

// decode reads a JSON body into v. An empty body leaves v as it is.
func decode(c echo.Context, v any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apierr.BadRequest("request body should be a json object", err)
	}
	return nil
}

// params returns path parameters, or error if some of them are empty.
func params(c echo.Context, names ...string) ([]string, error) {
	values := make([]string, 0, len(names))
	for _, n := range names {
		v := c.Param(n)
		if v == "" {
			return nil, apierr.BadRequest(n+" is required", nil)
		}
		values = append(values, v)
	}
	return values, nil
}

// CreatePayloadHandler creates a payload of a source and runs it.
//
// The payload runs in background unless the request says `{"asynchronous": false}`.
func CreatePayloadHandler(s scheduler.Scheduler, projectParam string, sourceParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ps, err := params(c, projectParam, sourceParam)
		if err != nil {
			return err
		}
		req := apipayloads.CreateRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}

		p, err := s.CreatePayload(
			c.Request().Context(), ps[0], ps[1], auth.User(c), req.AsynchronousOr(true),
		)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusCreated, apipayloads.ComposeDetail(p))
	}
}

// TrainAllHandler creates payloads of all selected sources in a project.
//
// Payloads run one by one unless the request says `{"asynchronous": true}`.
func TrainAllHandler(s scheduler.Scheduler, projectParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ps, err := params(c, projectParam)
		if err != nil {
			return err
		}
		req := apipayloads.CreateRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}

		created, err := s.TrainAllModels(c.Request().Context(), ps[0], auth.User(c), req.AsynchronousOr(false))
		if err != nil {
			return apierr.FromDomain(err)
		}

		resp := make([]apipayloads.Detail, 0, len(created))
		for _, p := range created {
			resp = append(resp, apipayloads.ComposeDetail(p))
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

func GetPayloadHandler(database kdb.Database, projectParam string, payloadParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ps, err := params(c, projectParam, payloadParam)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		session, err := database.Open(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		defer session.Close()

		p, err := session.Payloads().Get(ctx, ps[0], ps[1])
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apipayloads.ComposeDetail(p))
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/opst/knitlabel/pkg/api/types/errors"
	apipayloads "github.com/opst/knitlabel/pkg/api/types/payloads"
	"github.com/opst/knitlabel/pkg/payload/sample"
)

// SampleHandler runs a labeling function as a dry run, and responds what it has calculated.
func SampleHandler(s sample.Sampler, projectParam string, sourceParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ps, err := params(c, projectParam, sourceParam)
		if err != nil {
			return err
		}
		req := apipayloads.SampleRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}

		result, err := s.RunSample(c.Request().Context(), ps[0], ps[1], req.DocBin)
		if errors.Is(err, sample.ErrNotRuleBased) {
			return apierr.BadRequest("sample runs are supported only for labeling functions", err)
		} else if errors.Is(err, sample.ErrSampleRunning) {
			return apierr.NewErrorMessage(
				http.StatusConflict, "conflict",
				apierr.WithAdvice("the source is being sampled. retry after it ends"),
				apierr.WithError(err),
			)
		} else if err != nil {
			return apierr.FromDomain(err)
		}

		logs := result.Logs
		if logs == nil {
			logs = []string{}
		}
		return c.JSON(http.StatusOK, apipayloads.SampleResult{
			Labels:    result.Labels,
			Logs:      logs,
			HasErrors: result.HasErrors,
		})
	}
}

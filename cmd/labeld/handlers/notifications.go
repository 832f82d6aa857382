package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/knitlabel/cmd/labeld/auth"
	apierr "github.com/opst/knitlabel/pkg/api/types/errors"
	apipayloads "github.com/opst/knitlabel/pkg/api/types/payloads"
	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	"github.com/opst/knitlabel/pkg/notification"
)

// CustomNotificationHandler sends a free text notification to the requesting user.
func CustomNotificationHandler(database kdb.Database, notifier notification.Notifier, projectParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ps, err := params(c, projectParam)
		if err != nil {
			return err
		}
		req := apipayloads.NotificationRequest{}
		if err := decode(c, &req); err != nil {
			return err
		}
		if req.Message == "" {
			return apierr.BadRequest(`"message" is required`, nil)
		}
		ctx := c.Request().Context()

		session, err := database.Open(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		defer session.Close()

		project, err := session.Projects().Get(ctx, ps[0])
		if err != nil {
			return apierr.FromDomain(err)
		}
		if _, err := notifier.Create(ctx, session, domain.Custom, auth.User(c), project, req.Message); err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}
}

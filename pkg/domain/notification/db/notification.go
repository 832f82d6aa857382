package db

import (
	"context"
	"time"

	"github.com/opst/knitlabel/pkg/domain"
)

type NotificationInterface interface {
	// Duplicated tells whether a notification for (project, type, user) has been created since `since`.
	Duplicated(ctx context.Context, projectId string, typ domain.NotificationType, userId string, since time.Time) (bool, error)

	// New stores a notification. Id and CreatedAt are filled.
	New(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

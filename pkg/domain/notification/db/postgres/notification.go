package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	"github.com/opst/knitlabel/pkg/domain"
	knotification "github.com/opst/knitlabel/pkg/domain/notification/db"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type pgNotification struct {
	conn kpool.Conn
}

func New(conn kpool.Conn) knotification.NotificationInterface {
	return &pgNotification{conn: conn}
}

func (n *pgNotification) Duplicated(
	ctx context.Context, projectId string, typ domain.NotificationType, userId string, since time.Time,
) (bool, error) {
	var exists bool
	if err := n.conn.QueryRow(
		ctx,
		`
		select exists (
			select 1 from "notification"
			where
				"project_id" = $1 and "type" = $2 and "user_id" = $3
				and "created_at" >= $4
		)
		`,
		projectId, string(typ), userId, since,
	).Scan(&exists); err != nil {
		return false, xe.Wrap(err)
	}
	return exists, nil
}

func (n *pgNotification) New(ctx context.Context, notif domain.Notification) (domain.Notification, error) {
	tx, err := n.conn.Begin(ctx)
	if err != nil {
		return domain.Notification{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	if notif.Id == "" {
		notif.Id = uuid.NewString()
	}
	if notif.State == "" {
		notif.State = domain.Initial
	}

	var projectId *string
	if notif.ProjectId != "" {
		projectId = &notif.ProjectId
	}

	if err := tx.QueryRow(
		ctx,
		`
		insert into "notification"
			("id", "project_id", "user_id", "type", "level", "message", "important", "state")
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning "created_at"
		`,
		notif.Id, projectId, notif.UserId, string(notif.Type), string(notif.Level),
		notif.Message, notif.Important, string(notif.State),
	).Scan(&notif.CreatedAt); err != nil {
		return domain.Notification{}, xe.Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Notification{}, xe.Wrap(err)
	}
	return notif, nil
}

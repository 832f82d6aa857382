package mock

import (
	"context"
	"errors"
	"time"

	"github.com/opst/knitlabel/pkg/domain"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	knotification "github.com/opst/knitlabel/pkg/domain/notification/db"
)

type NotificationInterface struct {
	Impl struct {
		Duplicated func(ctx context.Context, projectId string, typ domain.NotificationType, userId string, since time.Time) (bool, error)
		New        func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	}

	Calls struct {
		Duplicated dbmock.CallLog[struct {
			ProjectId string
			Type      domain.NotificationType
			UserId    string
			Since     time.Time
		}]
		New dbmock.CallLog[domain.Notification]
	}
}

var _ knotification.NotificationInterface = &NotificationInterface{}

func NewNotificationInterface() *NotificationInterface {
	return &NotificationInterface{}
}

func (m *NotificationInterface) Duplicated(ctx context.Context, projectId string, typ domain.NotificationType, userId string, since time.Time) (bool, error) {
	m.Calls.Duplicated = append(m.Calls.Duplicated, struct {
		ProjectId string
		Type      domain.NotificationType
		UserId    string
		Since     time.Time
	}{ProjectId: projectId, Type: typ, UserId: userId, Since: since})
	if m.Impl.Duplicated != nil {
		return m.Impl.Duplicated(ctx, projectId, typ, userId, since)
	}
	panic(errors.New("it should not be called"))
}

func (m *NotificationInterface) New(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	m.Calls.New = append(m.Calls.New, n)
	if m.Impl.New != nil {
		return m.Impl.New(ctx, n)
	}
	panic(errors.New("it should not be called"))
}

package notification

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/telemetry"
)

type Notifier interface {
	// Create stores a notification for the user, rendered from the template of typ with args.
	//
	// # Returns
	//
	// - *domain.Notification: created notification.
	// When the same type of notification for the user in the project has been created
	// within the dedupe window, nothing is created and it is nil.
	//
	// - error: ErrUnknownType, ErrArgumentMismatch, or errors from the session.
	Create(
		ctx context.Context, session kdb.Session,
		typ domain.NotificationType, userId string, project domain.Project, args ...string,
	) (*domain.Notification, error)
}

type notifier struct {
	window    time.Duration
	publisher Publisher
	telemetry telemetry.Sink
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*notifier)

func WithClock(now func() time.Time) Option {
	return func(n *notifier) {
		n.now = now
	}
}

func NewNotifier(
	window time.Duration, publisher Publisher, sink telemetry.Sink, logger *log.Logger,
	options ...Option,
) Notifier {
	n := &notifier{
		window:    window,
		publisher: publisher,
		telemetry: sink,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range options {
		o(n)
	}
	return n
}

func (n *notifier) Create(
	ctx context.Context, session kdb.Session,
	typ domain.NotificationType, userId string, project domain.Project, args ...string,
) (*domain.Notification, error) {
	dup, err := session.Notifications().Duplicated(ctx, project.Id, typ, userId, n.now().Add(-n.window))
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if dup {
		n.logger.Debugf("notification %s for user %s in project %s is suppressed", typ, userId, project.Id)
		return nil, nil
	}

	message, level, err := Resolve(typ, args...)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	created, err := session.Notifications().New(ctx, domain.Notification{
		ProjectId: project.Id,
		UserId:    userId,
		Type:      typ,
		Level:     level,
		Message:   message,
		State:     domain.Initial,
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}

	if project.OrganizationId != "" {
		n.publisher.PublishGlobal(ctx, project.OrganizationId, "notification_created:"+userId)
	}
	n.telemetry.Post(ctx, userId, telemetry.AddNotification{Level: string(level), Message: message})
	return &created, nil
}

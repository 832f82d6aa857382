// Package lifecycle changes states of payloads, telling users and subscribers about it.
//
// Payloads are created in CREATED, and then go to FINISHED or FAILED just once.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/notification"
)

// events published to subscribers of the project.
const (
	EventCreated          = "payload_created"
	EventFinished         = "payload_finished"
	EventFailed           = "payload_failed"
	EventUpdateStatistics = "payload_update_statistics"
)

// Event builds a project event about a payload of a source.
func Event(name string, sourceId string, payloadId string) string {
	return fmt.Sprintf("%s:%s:%s", name, sourceId, payloadId)
}

// Scope is what a transition is about.
type Scope struct {
	Project domain.Project
	Source  domain.InformationSource
	UserId  string
}

type Lifecycle struct {
	notifier  notification.Notifier
	publisher notification.Publisher
	logger    *log.Logger
}

func New(notifier notification.Notifier, publisher notification.Publisher, logger *log.Logger) *Lifecycle {
	return &Lifecycle{notifier: notifier, publisher: publisher, logger: logger}
}

// Create a new payload of the source.
//
// The iteration of the payload is one more than the number of payloads of the source.
// Concurrent creations for the same source can get the same iteration.
func (l *Lifecycle) Create(ctx context.Context, session kdb.Session, scope Scope) (domain.Payload, error) {
	count, err := session.Payloads().Count(ctx, scope.Project.Id, scope.Source.Id)
	if err != nil {
		return domain.Payload{}, xe.Wrap(err)
	}

	payload, err := session.Payloads().New(ctx, domain.PayloadSpec{
		ProjectId:  scope.Project.Id,
		SourceId:   scope.Source.Id,
		Iteration:  count + 1,
		SourceCode: scope.Source.SourceCode,
		CreatedBy:  scope.UserId,
	})
	if err != nil {
		return domain.Payload{}, xe.Wrap(err)
	}

	l.publish(ctx, scope, Event(EventCreated, scope.Source.Id, payload.Id))
	return payload, nil
}

// Finish makes the payload FINISHED, and tells it.
func (l *Lifecycle) Finish(ctx context.Context, session kdb.Session, scope Scope, payloadId string) error {
	if err := session.Payloads().Transit(ctx, payloadId, domain.Finished); err != nil {
		return xe.Wrap(err)
	}
	l.notify(ctx, session, scope, domain.SourceCompleted)
	l.publish(ctx, scope, Event(EventFinished, scope.Source.Id, payloadId))
	return nil
}

// Fail makes the payload FAILED, and tells it.
//
// When the payload has been FAILED or FINISHED already, it does nothing.
// It is safe to be called again from failure handlers.
//
// # Returns
//
// - bool: true when it is changed to FAILED by this call.
//
// - error
func (l *Lifecycle) Fail(ctx context.Context, session kdb.Session, scope Scope, payloadId string) (bool, error) {
	err := session.Payloads().Transit(ctx, payloadId, domain.Failed)
	if errors.Is(err, domain.ErrInvalidPayloadStateChanging) {
		l.logger.Debugf("payload %s is in a terminal state already: %v", payloadId, err)
		return false, nil
	} else if err != nil {
		return false, xe.Wrap(err)
	}

	l.notify(ctx, session, scope, domain.SourceFailed)
	l.publish(ctx, scope, Event(EventFailed, scope.Source.Id, payloadId))
	return true, nil
}

// Started tells the user that the worker of the source is being launched.
func (l *Lifecycle) Started(ctx context.Context, session kdb.Session, scope Scope) {
	l.notify(ctx, session, scope, domain.SourceStarted)
}

// StatisticsUpdated tells subscribers that statistics of the source are recalculated after the payload.
func (l *Lifecycle) StatisticsUpdated(ctx context.Context, scope Scope, payloadId string) {
	l.publish(ctx, scope, Event(EventUpdateStatistics, scope.Source.Id, payloadId))
}

func (l *Lifecycle) notify(ctx context.Context, session kdb.Session, scope Scope, typ domain.NotificationType) {
	if _, err := l.notifier.Create(ctx, session, typ, scope.UserId, scope.Project, scope.Source.Name); err != nil {
		l.logger.Warnf("failed to create notification %s for source %s: %+v", typ, scope.Source.Id, err)
	}
}

func (l *Lifecycle) publish(ctx context.Context, scope Scope, event string) {
	l.publisher.Publish(ctx, scope.Project.OrganizationId, scope.Project.Id, event)
}

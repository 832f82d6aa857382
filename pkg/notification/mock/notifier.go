package mock

import (
	"context"
	"sync"

	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	"github.com/opst/knitlabel/pkg/notification"
)

type Created struct {
	Type      domain.NotificationType
	UserId    string
	ProjectId string
	Args      []string
}

// Notifier records notifications, rendering them with templates.
//
// It does not touch the session.
type Notifier struct {
	mu      sync.Mutex
	created []Created
}

var _ notification.Notifier = &Notifier{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Create(
	_ context.Context, _ kdb.Session,
	typ domain.NotificationType, userId string, project domain.Project, args ...string,
) (*domain.Notification, error) {
	message, level, err := notification.Resolve(typ, args...)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, Created{Type: typ, UserId: userId, ProjectId: project.Id, Args: args})
	return &domain.Notification{
		ProjectId: project.Id,
		UserId:    userId,
		Type:      typ,
		Level:     level,
		Message:   message,
		State:     domain.Initial,
	}, nil
}

func (n *Notifier) Created() []Created {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Created, len(n.created))
	copy(out, n.created)
	return out
}

// Types returns types of created notifications in order.
func (n *Notifier) Types() []domain.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationType, 0, len(n.created))
	for _, c := range n.created {
		out = append(out, c.Type)
	}
	return out
}

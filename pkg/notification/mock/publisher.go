package mock

import (
	"context"
	"sync"

	"github.com/opst/knitlabel/pkg/notification"
)

type Published struct {
	Organization string

	// message as it is sent, "{project}:..." or "GLOBAL:...".
	Message string
}

// Publisher records published messages.
type Publisher struct {
	mu        sync.Mutex
	published []Published
}

var _ notification.Publisher = &Publisher{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, organization string, projectId string, message string) {
	p.append(Published{Organization: organization, Message: projectId + ":" + message})
}

func (p *Publisher) PublishGlobal(_ context.Context, organization string, message string) {
	p.append(Published{Organization: organization, Message: "GLOBAL:" + message})
}

func (p *Publisher) append(m Published) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, m)
}

// Messages returns published messages in order.
func (p *Publisher) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.published))
	for _, m := range p.published {
		out = append(out, m.Message)
	}
	return out
}

func (p *Publisher) Published() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Published, len(p.published))
	copy(out, p.published)
	return out
}

package notification

import (
	"context"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/webhook"
)

// Publisher pushes events to live subscribers of an organization.
//
// Publishing is best effort. Failures are logged, not returned.
type Publisher interface {
	// Publish sends "{projectId}:{message}".
	Publish(ctx context.Context, organization string, projectId string, message string)

	// PublishGlobal sends "GLOBAL:{message}".
	PublishGlobal(ctx context.Context, organization string, message string)
}

type update struct {
	Organization string `json:"organization"`
	Message      string `json:"message"`
}

type webPublisher struct {
	url    string
	client *webhook.Client
	logger *log.Logger
}

// NewPublisher creates Publisher posting to "<url>/notify".
func NewPublisher(url string, client *webhook.Client, logger *log.Logger) Publisher {
	return &webPublisher{url: webhook.Join(url, "notify"), client: client, logger: logger}
}

func (p *webPublisher) Publish(ctx context.Context, organization string, projectId string, message string) {
	p.send(ctx, organization, projectId+":"+message)
}

func (p *webPublisher) PublishGlobal(ctx context.Context, organization string, message string) {
	p.send(ctx, organization, "GLOBAL:"+message)
}

func (p *webPublisher) send(ctx context.Context, organization string, message string) {
	_, err := webhook.Post[any](ctx, p.client, p.url, update{Organization: organization, Message: message})
	if err != nil {
		p.logger.Warnf("could not send organization update (%s): %+v", message, err)
	}
}

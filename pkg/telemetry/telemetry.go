// Package telemetry posts usage events of users.
//
// Posting is best effort. Failures are logged and never returned.
package telemetry

import (
	"context"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/webhook"
)

type Event interface {
	EventName() string
}

// AddInformationSourceRun is posted when a payload ends.
type AddInformationSourceRun struct {
	ProjectName string   `json:"ProjectName"`
	Type        string   `json:"Type"`
	Code        string   `json:"Code"`
	Logs        []string `json:"Logs"`

	// in seconds
	RunTime float64 `json:"RunTime"`
}

func (AddInformationSourceRun) EventName() string {
	return "AddInformationSourceRun"
}

// AddNotification is posted when a notification is created.
type AddNotification struct {
	Level   string `json:"Level"`
	Message string `json:"Message"`
}

func (AddNotification) EventName() string {
	return "AddNotification"
}

type Sink interface {
	Post(ctx context.Context, userId string, event Event)
}

type envelope struct {
	User    string `json:"user"`
	Event   string `json:"event"`
	Payload Event  `json:"payload"`
}

type webSink struct {
	url    string
	client *webhook.Client
	logger *log.Logger
}

// New creates Sink posting events to "<url>/track".
func New(url string, client *webhook.Client, logger *log.Logger) Sink {
	return &webSink{url: webhook.Join(url, "track"), client: client, logger: logger}
}

func (s *webSink) Post(ctx context.Context, userId string, event Event) {
	_, err := webhook.Post[any](ctx, s.client, s.url, envelope{
		User:    userId,
		Event:   event.EventName(),
		Payload: event,
	})
	if err != nil {
		s.logger.Warnf("telemetry: failed to post %s: %+v", event.EventName(), err)
	}
}

type nop struct{}

// Nop returns Sink discarding events.
func Nop() Sink {
	return nop{}
}

func (nop) Post(context.Context, string, Event) {}

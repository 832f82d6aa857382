// Package notification creates user notifications and publishes project events.
package notification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opst/knitlabel/pkg/domain"
)

var (
	ErrUnknownType      = errors.New("no message template for the notification type")
	ErrArgumentMismatch = errors.New("arguments do not fit the message template")
)

// placeholder in templates. Placeholders are replaced by arguments from left to right.
const placeholder = "@@arg@@"

type template struct {
	level   domain.NotificationLevel
	message string
}

var templates = map[domain.NotificationType]template{
	domain.SourceStarted: {
		level:   domain.Info,
		message: "Information source @@arg@@ has started.",
	},
	domain.SourceCompleted: {
		level:   domain.Success,
		message: "Information source @@arg@@ has finished.",
	},
	domain.SourceFailed: {
		level:   domain.Error,
		message: "Information source @@arg@@ has failed. See logs of the payload for details.",
	},
	domain.SourceEmbeddingMissing: {
		level:   domain.Error,
		message: "Tensors of embedding @@arg@@ are not exported. Recreate the embedding and try again.",
	},
	domain.SourceCantFindEmbedding: {
		level:   domain.Error,
		message: "Embedding @@arg@@ can't be found, or doesn't fit labeling task @@arg@@.",
	},
	domain.Custom: {
		level:   domain.Info,
		message: "@@arg@@",
	},
}

// Resolve renders the message of the notification type with args.
//
// # Returns
//
// - string: rendered message
//
// - domain.NotificationLevel: level of the type
//
// - error: ErrUnknownType or ErrArgumentMismatch
func Resolve(typ domain.NotificationType, args ...string) (string, domain.NotificationLevel, error) {
	t, ok := templates[typ]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}

	if n := strings.Count(t.message, placeholder); n != len(args) {
		return "", "", fmt.Errorf("%w: %s takes %d, but got %d", ErrArgumentMismatch, typ, n, len(args))
	}

	parts := strings.Split(t.message, placeholder)
	message := new(strings.Builder)
	message.WriteString(parts[0])
	for i, a := range args {
		message.WriteString(a)
		message.WriteString(parts[i+1])
	}
	return message.String(), t.level, nil
}

// Package embedding talks to the embedding service.
package embedding

import (
	"context"

	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/webhook"
)

type Refresher interface {
	// Refresh requests the embedding service to export tensors of the embedding
	// into the blob store, and waits for the response.
	Refresh(ctx context.Context, projectId string, embeddingId string) error
}

type service struct {
	url    string
	client *webhook.Client
}

// New creates Refresher calling "POST <url>/tensor_upload/{project}/{embedding}".
func New(url string, client *webhook.Client) Refresher {
	return &service{url: url, client: client}
}

func (s *service) Refresh(ctx context.Context, projectId string, embeddingId string) error {
	_, err := webhook.Post[any](
		ctx, s.client, webhook.Join(s.url, "tensor_upload", projectId, embeddingId), nil,
	)
	return xe.Wrap(err)
}

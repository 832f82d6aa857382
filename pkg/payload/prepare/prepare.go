// Package prepare builds inputs of payloads before their workers are launched.
package prepare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/blob"
	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	"github.com/opst/knitlabel/pkg/embedding"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/notification"
)

// Error is a preparation failure which the user is told about.
//
// Its message is the text of the notification sent for it.
type Error struct {
	Type    domain.NotificationType
	Args    []string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func asError(typ domain.NotificationType, args ...string) error {
	message, _, err := notification.Resolve(typ, args...)
	if err != nil {
		return xe.Wrap(err)
	}
	return &Error{Type: typ, Args: args, Message: message}
}

// Input is what a learned worker reads in addition to the source code.
type Input struct {
	// key of the auxiliary file in the blob store: the tensor export of the embedding.
	AuxiliaryKey string

	// JSON document of embedding, manual labels and record ids.
	Document []byte
}

// InputDocument is the shape of Input.Document.
type InputDocument struct {
	EmbeddingType domain.EmbeddingType `json:"embedding_type"`
	EmbeddingName string               `json:"embedding_name"`
	Labels        ManualLabels         `json:"labels"`

	// records which have the embedding
	Ids []string `json:"ids"`

	// records excluded from statistics. Learners may train on them.
	ActiveLearningIds []string `json:"active_learning_ids"`
}

type ManualLabels struct {
	// record id to label name (classification), or record id to spans (extraction).
	Manual any `json:"manual"`
}

type Preparer interface {
	// Prepare builds the input of a payload of source.
	//
	// Rule-based sources need no inputs; then Input is nil.
	//
	// # Args
	//
	// - ctx
	//
	// - session: the session of the payload's job.
	//
	// - project: the owner of source.
	//
	// - source: source to be run.
	//
	// - userId: who scheduled the payload. Notifications are sent to.
	//
	// # Returns
	//
	// - *Input
	//
	// - error: *Error when the user should fix something, or other errors.
	Prepare(
		ctx context.Context, session kdb.Session,
		project domain.Project, source domain.InformationSource, userId string,
	) (*Input, error)
}

type preparer struct {
	blobs     blob.Store
	refresher embedding.Refresher
	notifier  notification.Notifier
	logger    *log.Logger
}

func New(
	blobs blob.Store, refresher embedding.Refresher, notifier notification.Notifier, logger *log.Logger,
) Preparer {
	return &preparer{
		blobs:     blobs,
		refresher: refresher,
		notifier:  notifier,
		logger:    logger,
	}
}

func (p *preparer) Prepare(
	ctx context.Context, session kdb.Session,
	project domain.Project, source domain.InformationSource, userId string,
) (*Input, error) {
	switch source.Kind {
	case domain.LabelingFunction:
		return nil, nil
	case domain.ActiveLearning:
		return p.learned(ctx, session, project, source, userId)
	default:
		return nil, xe.New(fmt.Sprintf("unknown information source type: %s", source.Kind))
	}
}

func (p *preparer) learned(
	ctx context.Context, session kdb.Session,
	project domain.Project, source domain.InformationSource, userId string,
) (*Input, error) {
	if err := Exclude(ctx, session, source); err != nil {
		return nil, err
	}

	emb, err := p.embedding(ctx, session, project, source, userId)
	if err != nil {
		return nil, err
	}

	if err := p.refresher.Refresh(ctx, project.Id, emb.Id); err != nil {
		return nil, xe.Wrap(err)
	}

	tensors := blob.EmbeddingTensors(project.Id, emb.Id)
	if ok, err := p.blobs.Exists(ctx, project.OrganizationId, tensors); err != nil {
		return nil, xe.Wrap(err)
	} else if !ok {
		p.notify(ctx, session, domain.SourceEmbeddingMissing, userId, project, emb.Name)
		return nil, asError(domain.SourceEmbeddingMissing, emb.Name)
	}

	var manual any
	switch source.Shape {
	case domain.WholeRecord:
		manual, err = session.Labels().ManualClassification(ctx, project.Id, source.LabelingTaskId)
	case domain.SpanList:
		manual, err = session.Labels().ManualExtraction(ctx, project.Id, source.LabelingTaskId)
	}
	if err != nil {
		return nil, xe.Wrap(err)
	}

	ids, err := session.Embeddings().RecordIds(ctx, project.Id)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	training, err := session.Sources().Exclusions(ctx, source.Id)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	doc, err := json.Marshal(InputDocument{
		EmbeddingType:     emb.Type,
		EmbeddingName:     emb.Name,
		Labels:            ManualLabels{Manual: manual},
		Ids:               nonnil(ids),
		ActiveLearningIds: nonnil(training),
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}

	return &Input{AuxiliaryKey: tensors, Document: doc}, nil
}

// embedding resolves the embedding named in the code of source,
// and checks it fits the labeling task.
func (p *preparer) embedding(
	ctx context.Context, session kdb.Session,
	project domain.Project, source domain.InformationSource, userId string,
) (domain.Embedding, error) {
	name, err := EmbeddingName(source.SourceCode)
	if err != nil {
		return domain.Embedding{}, xe.Wrap(err)
	}

	task, err := session.Projects().Task(ctx, project.Id, source.LabelingTaskId)
	if err != nil {
		return domain.Embedding{}, xe.Wrap(err)
	}

	emb, err := session.Embeddings().ByName(ctx, project.Id, name)
	if errors.Is(err, domain.ErrMissing) || (err == nil && !emb.Type.Fits(task.Type)) {
		p.notify(ctx, session, domain.SourceCantFindEmbedding, userId, project, name, task.Name)
		return domain.Embedding{}, asError(domain.SourceCantFindEmbedding, name, task.Name)
	} else if err != nil {
		return domain.Embedding{}, xe.Wrap(err)
	}
	return emb, nil
}

func (p *preparer) notify(
	ctx context.Context, session kdb.Session,
	typ domain.NotificationType, userId string, project domain.Project, args ...string,
) {
	if _, err := p.notifier.Create(ctx, session, typ, userId, project, args...); err != nil {
		p.logger.Warnf("failed to create notification %s: %+v", typ, err)
	}
}

// Exclude withholds every other manually labeled record of the source's task from
// statistics of the source, replacing exclusions made before.
//
// Learners train on the excluded records.
func Exclude(ctx context.Context, session kdb.Session, source domain.InformationSource) error {
	manual, err := session.Labels().ManualRecords(ctx, source.ProjectId, source.LabelingTaskId)
	if err != nil {
		return xe.Wrap(err)
	}
	excluded := make([]string, 0, (len(manual)+1)/2)
	for i, id := range manual {
		if i%2 == 0 {
			excluded = append(excluded, id)
		}
	}
	return xe.Wrap(session.Sources().ReplaceExclusions(ctx, source.ProjectId, source.Id, excluded))
}

func nonnil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

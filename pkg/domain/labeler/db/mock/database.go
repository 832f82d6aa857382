package mock

import (
	"context"
	"errors"

	kembedding "github.com/opst/knitlabel/pkg/domain/embedding/db"
	embeddingmock "github.com/opst/knitlabel/pkg/domain/embedding/db/mock"
	dbmock "github.com/opst/knitlabel/pkg/domain/internal/db/mock"
	klabel "github.com/opst/knitlabel/pkg/domain/label/db"
	labelmock "github.com/opst/knitlabel/pkg/domain/label/db/mock"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	knotification "github.com/opst/knitlabel/pkg/domain/notification/db"
	notificationmock "github.com/opst/knitlabel/pkg/domain/notification/db/mock"
	kpayload "github.com/opst/knitlabel/pkg/domain/payload/db"
	payloadmock "github.com/opst/knitlabel/pkg/domain/payload/db/mock"
	kproject "github.com/opst/knitlabel/pkg/domain/project/db"
	projectmock "github.com/opst/knitlabel/pkg/domain/project/db/mock"
	krecord "github.com/opst/knitlabel/pkg/domain/record/db"
	recordmock "github.com/opst/knitlabel/pkg/domain/record/db/mock"
	kschema "github.com/opst/knitlabel/pkg/domain/schema/db"
	ksource "github.com/opst/knitlabel/pkg/domain/source/db"
	sourcemock "github.com/opst/knitlabel/pkg/domain/source/db/mock"
	kstatistics "github.com/opst/knitlabel/pkg/domain/statistics/db"
	statisticsmock "github.com/opst/knitlabel/pkg/domain/statistics/db/mock"
)

// Session is a Session made of mocks of each interface.
type Session struct {
	Project      *projectmock.ProjectInterface
	Source       *sourcemock.SourceInterface
	Payload      *payloadmock.PayloadInterface
	Label        *labelmock.LabelInterface
	Record       *recordmock.RecordInterface
	Embedding    *embeddingmock.EmbeddingInterface
	Notification *notificationmock.NotificationInterface
	Statistic    *statisticsmock.StatisticsInterface

	// times Close is called
	Closed int
}

var _ kdb.Session = &Session{}

func NewSession() *Session {
	return &Session{
		Project:      projectmock.NewProjectInterface(),
		Source:       sourcemock.NewSourceInterface(),
		Payload:      payloadmock.NewPayloadInterface(),
		Label:        labelmock.NewLabelInterface(),
		Record:       recordmock.NewRecordInterface(),
		Embedding:    embeddingmock.NewEmbeddingInterface(),
		Notification: notificationmock.NewNotificationInterface(),
		Statistic:    statisticsmock.NewStatisticsInterface(),
	}
}

func (s *Session) Projects() kproject.ProjectInterface { return s.Project }

func (s *Session) Sources() ksource.SourceInterface { return s.Source }

func (s *Session) Payloads() kpayload.PayloadInterface { return s.Payload }

func (s *Session) Labels() klabel.LabelInterface { return s.Label }

func (s *Session) Records() krecord.RecordInterface { return s.Record }

func (s *Session) Embeddings() kembedding.EmbeddingInterface { return s.Embedding }

func (s *Session) Notifications() knotification.NotificationInterface { return s.Notification }

func (s *Session) Statistics() kstatistics.StatisticsInterface { return s.Statistic }

func (s *Session) Close() error {
	s.Closed += 1
	return nil
}

type Database struct {
	Impl struct {
		Open func(ctx context.Context) (kdb.Session, error)
	}
	Calls struct {
		Open dbmock.CallLog[struct{}]
	}
}

var _ kdb.Database = &Database{}

func NewDatabase() *Database {
	return &Database{}
}

// Serving returns Database whose Open always returns the session.
func Serving(session kdb.Session) *Database {
	d := NewDatabase()
	d.Impl.Open = func(context.Context) (kdb.Session, error) { return session, nil }
	return d
}

func (d *Database) Open(ctx context.Context) (kdb.Session, error) {
	d.Calls.Open = append(d.Calls.Open, struct{}{})
	if d.Impl.Open != nil {
		return d.Impl.Open(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (d *Database) Schema() kschema.SchemaInterface {
	panic(errors.New("it should not be called"))
}

func (d *Database) Close() error {
	return nil
}

package db

import (
	"context"

	kembedding "github.com/opst/knitlabel/pkg/domain/embedding/db"
	klabel "github.com/opst/knitlabel/pkg/domain/label/db"
	knotification "github.com/opst/knitlabel/pkg/domain/notification/db"
	kpayload "github.com/opst/knitlabel/pkg/domain/payload/db"
	kproject "github.com/opst/knitlabel/pkg/domain/project/db"
	krecord "github.com/opst/knitlabel/pkg/domain/record/db"
	kschema "github.com/opst/knitlabel/pkg/domain/schema/db"
	ksource "github.com/opst/knitlabel/pkg/domain/source/db"
	kstatistics "github.com/opst/knitlabel/pkg/domain/statistics/db"
)

type Database interface {
	// Open starts a new Session.
	//
	// Each Session must be closed by the opener.
	Open(ctx context.Context) (Session, error)

	Schema() kschema.SchemaInterface
	Close() error
}

// Session is a scope of persistence.
//
// A Session holds one connection, and each mutation through it runs
// in its own transaction which is finished before the method returns.
//
// Sessions are not safe for concurrent use.
// Do not pass a Session over goroutines; open another one.
type Session interface {
	Projects() kproject.ProjectInterface
	Sources() ksource.SourceInterface
	Payloads() kpayload.PayloadInterface
	Labels() klabel.LabelInterface
	Records() krecord.RecordInterface
	Embeddings() kembedding.EmbeddingInterface
	Notifications() knotification.NotificationInterface
	Statistics() kstatistics.StatisticsInterface

	// Close releases the connection.
	Close() error
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	kembedding "github.com/opst/knitlabel/pkg/domain/embedding/db"
	kpgembedding "github.com/opst/knitlabel/pkg/domain/embedding/db/postgres"
	klabel "github.com/opst/knitlabel/pkg/domain/label/db"
	kpglabel "github.com/opst/knitlabel/pkg/domain/label/db/postgres"
	dbInterface "github.com/opst/knitlabel/pkg/domain/labeler/db"
	knotification "github.com/opst/knitlabel/pkg/domain/notification/db"
	kpgnotification "github.com/opst/knitlabel/pkg/domain/notification/db/postgres"
	kpayload "github.com/opst/knitlabel/pkg/domain/payload/db"
	kpgpayload "github.com/opst/knitlabel/pkg/domain/payload/db/postgres"
	kproject "github.com/opst/knitlabel/pkg/domain/project/db"
	kpgproject "github.com/opst/knitlabel/pkg/domain/project/db/postgres"
	krecord "github.com/opst/knitlabel/pkg/domain/record/db"
	kpgrecord "github.com/opst/knitlabel/pkg/domain/record/db/postgres"
	kschema "github.com/opst/knitlabel/pkg/domain/schema/db"
	kpgschema "github.com/opst/knitlabel/pkg/domain/schema/db/postgres"
	ksource "github.com/opst/knitlabel/pkg/domain/source/db"
	kpgsource "github.com/opst/knitlabel/pkg/domain/source/db/postgres"
	kstatistics "github.com/opst/knitlabel/pkg/domain/statistics/db"
	kpgstatistics "github.com/opst/knitlabel/pkg/domain/statistics/db/postgres"
	xe "github.com/opst/knitlabel/pkg/errors"
)

type labelDBPostgres struct {
	pool   kpool.Pool
	schema kschema.SchemaInterface
}

type Config struct {
	SchemaRepository string
	MaxConns         int32
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

// WithMaxConns limits pooled connections. Each open Session holds one.
func WithMaxConns(n int32) Option {
	return func(c *Config) *Config {
		c.MaxConns = n
		return c
	}
}

func New(ctx context.Context, url string, options ...Option) (dbInterface.Database, error) {
	c := Config{}
	for _, option := range options {
		c = *option(&c)
	}

	pgconf, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if 0 < c.MaxConns {
		pgconf.MaxConns = c.MaxConns
	}

	pool, err := pgxpool.ConnectConfig(ctx, pgconf)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return Wrap(kpool.Wrap(pool), c.SchemaRepository), nil
}

// Wrap builds Database on an existing pool.
func Wrap(pool kpool.Pool, schemaRepository string) dbInterface.Database {
	var schema kschema.SchemaInterface = kpgschema.Null()
	if schemaRepository != "" {
		schema = kpgschema.New(pool, schemaRepository)
	}
	return &labelDBPostgres{pool: pool, schema: schema}
}

func (l *labelDBPostgres) Open(ctx context.Context) (dbInterface.Session, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return &session{
		conn:          conn,
		projects:      kpgproject.New(conn),
		sources:       kpgsource.New(conn),
		payloads:      kpgpayload.New(conn),
		labels:        kpglabel.New(conn),
		records:       kpgrecord.New(conn),
		embeddings:    kpgembedding.New(conn),
		notifications: kpgnotification.New(conn),
		statistics:    kpgstatistics.New(conn),
	}, nil
}

func (l *labelDBPostgres) Schema() kschema.SchemaInterface {
	return l.schema
}

func (l *labelDBPostgres) Close() error {
	l.pool.Close()
	return nil
}

type session struct {
	conn kpool.Conn

	projects      kproject.ProjectInterface
	sources       ksource.SourceInterface
	payloads      kpayload.PayloadInterface
	labels        klabel.LabelInterface
	records       krecord.RecordInterface
	embeddings    kembedding.EmbeddingInterface
	notifications knotification.NotificationInterface
	statistics    kstatistics.StatisticsInterface
}

func (s *session) Projects() kproject.ProjectInterface {
	return s.projects
}

func (s *session) Sources() ksource.SourceInterface {
	return s.sources
}

func (s *session) Payloads() kpayload.PayloadInterface {
	return s.payloads
}

func (s *session) Labels() klabel.LabelInterface {
	return s.labels
}

func (s *session) Records() krecord.RecordInterface {
	return s.records
}

func (s *session) Embeddings() kembedding.EmbeddingInterface {
	return s.embeddings
}

func (s *session) Notifications() knotification.NotificationInterface {
	return s.notifications
}

func (s *session) Statistics() kstatistics.StatisticsInterface {
	return s.statistics
}

func (s *session) Close() error {
	s.conn.Release()
	return nil
}

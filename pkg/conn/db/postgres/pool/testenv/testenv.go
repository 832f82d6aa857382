package testenv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/opst/knitlabel/pkg/conn/db/postgres/pool"
	kpgschema "github.com/opst/knitlabel/pkg/domain/schema/db/postgres"
)

// environment variable holding url of the database for tests.
//
// Tests using this package are skipped when it is empty.
const EnvDatabaseURL = "KNITLABEL_TEST_DATABASE_URL"

// PoolBroaker is a interface to get a pool.
type PoolBroaker interface {
	// GetPool returns a pool.
	//
	// Tables are cleaned up before returning and after t.
	GetPool(ctx context.Context, t *testing.T) kpool.Pool
}

type pg struct {
	pool *pgxpool.Pool
}

func (p *pg) GetPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Helper()
	t.Cleanup(func() { ClearTables(ctx, p.pool, t) })
	ClearTables(ctx, p.pool, t)
	return kpool.Wrap(p.pool)
}

// SchemaRepository returns the path to "schema/postgres" in this repository.
func SchemaRepository() string {
	_, here, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(here), "..", "..", "..", "..", "..", "..", "schema", "postgres")
}

// NewPoolBroaker connects to the database for tests, and upgrades its schema.
//
// When the database is not given, the test is skipped.
func NewPoolBroaker(ctx context.Context, t *testing.T) PoolBroaker {
	t.Helper()

	url := os.Getenv(EnvDatabaseURL)
	if url == "" {
		t.Skipf("%s is not set", EnvDatabaseURL)
	}

	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if err := kpgschema.New(kpool.Wrap(pool), SchemaRepository()).Upgrade(ctx); err != nil {
		t.Fatal(err)
	}
	return &pg{pool: pool}
}

func ClearTables(ctx context.Context, p *pgxpool.Pool, t *testing.T) {
	t.Helper()

	conn, err := p.Acquire(ctx)
	if err != nil {
		t.Errorf("fail to clean-up tables.: %v", err)
		return
	}
	defer conn.Release()

	for _, command := range []string{
		// by cascade, all rows depending on projects are deleted.
		`truncate "project" cascade`,
		`truncate "notification"`,
	} {
		if _, err := conn.Exec(ctx, command); err != nil {
			t.Errorf("fail to clean-up tables.: %v", err)
		}
	}
}

// Fixture inserts a project with a labeling task, its labels, records and one source.
type Fixture struct {
	ProjectId   string
	AttributeId string
	TaskId      string

	// label name to id
	Labels map[string]string

	// record id to number of tokens
	Records map[string]int

	SourceId string
}

func (f Fixture) Apply(ctx context.Context, t *testing.T, pool kpool.Pool) {
	t.Helper()
	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Release()

	exec := func(sql string, args ...any) {
		t.Helper()
		if _, err := conn.Exec(ctx, sql, args...); err != nil {
			t.Fatalf("%s: %v", sql, err)
		}
	}

	exec(
		`insert into "project" ("id", "organization_id", "name", "tokenizer")
		values ($1, gen_random_uuid(), 'project', 'en')`,
		f.ProjectId,
	)
	exec(
		`insert into "attribute" ("id", "project_id", "name") values ($1, $2, 'text')`,
		f.AttributeId, f.ProjectId,
	)
	exec(
		`insert into "labeling_task" ("id", "project_id", "attribute_id", "name", "task_type")
		values ($1, $2, $3, 'task', 'INFORMATION_EXTRACTION')`,
		f.TaskId, f.ProjectId, f.AttributeId,
	)
	for name, id := range f.Labels {
		exec(
			`insert into "labeling_task_label" ("id", "project_id", "labeling_task_id", "name")
			values ($1, $2, $3, $4)`,
			id, f.ProjectId, f.TaskId, name,
		)
	}
	for id, numToken := range f.Records {
		exec(
			`insert into "record" ("id", "project_id", "data") values ($1, $2, '{}')`,
			id, f.ProjectId,
		)
		exec(
			`insert into "record_attribute_token_statistics"
				("id", "project_id", "record_id", "attribute_id", "num_token")
			values (gen_random_uuid(), $1, $2, $3, $4)`,
			f.ProjectId, id, f.AttributeId, numToken,
		)
	}
	exec(
		`insert into "information_source" (
			"id", "project_id", "labeling_task_id", "type", "return_type",
			"name", "source_code", "is_selected", "created_by"
		) values ($1, $2, $3, 'LABELING_FUNCTION', 'YIELD', 'lf', 'def lf(record): ...', true, 'user')`,
		f.SourceId, f.ProjectId, f.TaskId,
	)
}

//go:generate go run github.com/Songmu/gocredits/cmd/gocredits@v0.3.0 -w
package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"

	kpg "github.com/opst/knitlabel/pkg/domain/labeler/db/postgres"
	kschema "github.com/opst/knitlabel/pkg/domain/schema/db"
	"github.com/opst/knitlabel/pkg/utils/try"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Host     string `flag:"host" help:"The host of the database."`
	Port     int    `flag:"port" help:"The port of the database."`
	User     string `flag:"user" help:"The user of the database."`
	Password string `flag:"pass" help:"The password of the database."`
	Database string `flag:"database" help:"The name of the database."`

	Schema  string `flag:"schema" help:"The path to the schema repository directory."`
	DryRun  bool   `flag:"dry-run" help:"Print the current schema version without upgrading."`
	License bool   `flag:"license" help:"Print the license."`
}

//go:embed CREDITS
var CREDITS string

// upgrade upgrades the schema and reports versions before and after it.
func upgrade(ctx context.Context, schema kschema.SchemaInterface, dryRun bool, out io.Writer) error {
	before, err := schema.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "current schema version: %d\n", before)
	if dryRun {
		return nil
	}

	if err := schema.Upgrade(ctx); err != nil {
		return err
	}

	after, err := schema.Version(ctx)
	if err != nil {
		return err
	}
	if after == before {
		fmt.Fprintln(out, "schema is up to date.")
	} else {
		fmt.Fprintf(out, "schema is upgraded: %d -> %d\n", before, after)
	}
	return nil
}

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, os.Kill,
	)
	defer cancel()

	port := 5432
	if sp := os.Getenv("DB_PORT"); sp != "" {
		p, err := strconv.Atoi(sp)
		if err == nil {
			port = p
		}
	}

	cmd := try.To(flarc.NewCommand(
		"database schema upgrader for knitlabel",
		Flag{
			Host:     os.Getenv("DB_HOST"),
			Port:     port,
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: os.Getenv("DB_NAME"),

			Schema: os.Getenv("KNITLABEL_SCHEMA"),
		},
		flarc.Args{},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()
			if flags.License {
				_, err := io.WriteString(c.Stdout(), CREDITS)
				return err
			}

			db, err := kpg.New(
				ctx,
				fmt.Sprintf(
					"postgres://%s:%s@%s:%d/%s",
					flags.User, flags.Password, flags.Host, flags.Port, flags.Database,
				),
				kpg.WithSchemaRepository(flags.Schema),
			)
			if err != nil {
				return err
			}
			defer db.Close()

			return upgrade(ctx, db.Schema(), flags.DryRun, c.Stdout())
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}

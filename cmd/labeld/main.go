//go:generate go run github.com/Songmu/gocredits/cmd/gocredits@v0.3.0 -w
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/cmd/labeld/auth"
	"github.com/opst/knitlabel/pkg/blob/minio"
	configs "github.com/opst/knitlabel/pkg/configs/backend"
	kpg "github.com/opst/knitlabel/pkg/domain/labeler/db/postgres"
	"github.com/opst/knitlabel/pkg/embedding"
	"github.com/opst/knitlabel/pkg/notification"
	"github.com/opst/knitlabel/pkg/payload/dispatch"
	"github.com/opst/knitlabel/pkg/payload/ingest"
	"github.com/opst/knitlabel/pkg/payload/lifecycle"
	"github.com/opst/knitlabel/pkg/payload/prepare"
	"github.com/opst/knitlabel/pkg/payload/runner"
	"github.com/opst/knitlabel/pkg/payload/sample"
	"github.com/opst/knitlabel/pkg/payload/scheduler"
	"github.com/opst/knitlabel/pkg/telemetry"
	"github.com/opst/knitlabel/pkg/utils/echoutil"
	"github.com/opst/knitlabel/pkg/utils/filewatch"
	"github.com/opst/knitlabel/pkg/utils/kubeutil"
	"github.com/opst/knitlabel/pkg/webhook"
	"github.com/opst/knitlabel/pkg/workloads/k8s"
)

//go:embed CREDITS
var CREDITS string

// how long in-flight payloads are waited for on shutdown
const drainTimeout = 30 * time.Second

func logger(prefix string, level log.Lvl) *log.Logger {
	l := log.New(prefix)
	l.SetLevel(level)
	return l
}

func main() {

	pconfig := flag.String(
		"config", os.Getenv("KNITLABEL_CONFIG"), "path to config file",
	)
	plic := flag.Bool("license", false, "show licenses of dependencies")
	schemaRepo := flag.String("schema-repo", os.Getenv("KNITLABEL_SCHEMA"), "schema repository path. (default: database.schemaRepository in config)")
	loglevel := flag.String("loglevel", "", "log level. debug|info|warn|error|off. (default: logLevel in config, or warn)")

	flag.Parse()

	if *plic {
		fmt.Println(CREDITS)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := configs.LoadBackendConfig(*pconfig)
	if err != nil {
		panic(err)
	}
	if *loglevel == "" {
		*loglevel = conf.LogLevel()
	}
	lvl, _ := echoutil.Level(*loglevel)

	{
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig, conf.Auth().KeyFile())
		if err != nil {
			panic(err)
		}
		defer wcancel()
		ctx = wctx
	}

	if *schemaRepo == "" {
		*schemaRepo = conf.Database().SchemaRepository()
	}
	db, err := kpg.New(ctx, conf.Database().URL(), kpg.WithSchemaRepository(*schemaRepo))
	if err != nil {
		panic(err)
	}
	if err := db.Schema().Upgrade(ctx); err != nil {
		panic(err)
	}
	{
		ctx_, ccan := db.Schema().Context(ctx)
		defer ccan()
		ctx = ctx_
	}

	blobs, err := minio.New(minio.Config{
		Endpoint:        conf.Storage().Endpoint(),
		AccessKeyID:     conf.Storage().AccessKeyID(),
		SecretAccessKey: conf.Storage().SecretAccessKey(),
		Region:          conf.Storage().Region(),
		UseSSL:          conf.Storage().UseSSL(),
		LinkExpiry:      conf.Execution().LinkExpiry(),
	})
	if err != nil {
		panic(err)
	}

	key, err := auth.LoadKey(conf.Auth().KeyFile())
	if err != nil {
		panic(err)
	}

	clientset, err := kubeutil.ConnectToK8s()
	if err != nil {
		panic(err)
	}
	cluster := k8s.AttachCluster(
		k8s.WrapK8sClient(clientset), conf.Cluster().Namespace(), conf.Cluster().Domain(),
	)

	hooks := webhook.New(&http.Client{Timeout: 30 * time.Second})
	sink := telemetry.Nop()
	if u := conf.Telemetry().URL(); u != "" {
		sink = telemetry.New(u, hooks, logger("[telemetry]", lvl))
	}
	publisher := notification.NewPublisher(conf.Notify().URL(), hooks, logger("[notify]", lvl))
	notifier := notification.NewNotifier(
		conf.Notification().DedupeWindow(), publisher, sink, logger("[notification]", lvl),
	)
	r := runner.New(cluster, conf.Cluster(), logger("[runner]", lvl))
	jobs := dispatch.New(logger("[dispatch]", lvl))

	payloadLogger := logger("[payload]", lvl)
	sched := scheduler.New(
		scheduler.Deps{
			Database:  db,
			Blobs:     blobs,
			Runner:    r,
			Preparer:  prepare.New(blobs, embedding.New(conf.Embedding().URL(), hooks), notifier, payloadLogger),
			Ingestor:  ingest.New(blobs, payloadLogger),
			Lifecycle: lifecycle.New(notifier, publisher, payloadLogger),
			Telemetry: sink,
			Jobs:      jobs,
		},
		conf.Execution(), payloadLogger,
	)

	server := BuildServer(Services{
		Database:  db,
		Scheduler: sched,
		Sampler:   sample.New(db, blobs, r, conf.Execution(), logger("[sample]", lvl)),
		Notifier:  notifier,
		Verifier:  auth.NewVerifier(key),
	}, *loglevel)
	for _, route := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(route.Method), route.Path)
	}

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := server.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && err != http.ErrServerClosed {
			ch <- err
		}
	}()

	exit := 0
	select {
	case <-ctx.Done():
		server.Logger.Infof("context has been done: %s, cause: %s", ctx.Err(), context.Cause(ctx))
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stops with error:", err)
			exit = 1
		}
	}

	server.Logger.Info("shutting down...")
	{
		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()
		if err := server.Shutdown(qctx); err != nil {
			server.Logger.Errorf("Shutdown with error. %+v", err)
			exit = 1
		}
	}
	{
		dctx, dcancel := context.WithTimeout(context.Background(), drainTimeout)
		defer dcancel()
		if err := jobs.Wait(dctx); err != nil {
			server.Logger.Errorf("%+v", err)
			exit = 1
		}
	}
	db.Close()
	os.Exit(exit)
}

package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	"github.com/viabilize/viabilize-auth/config"
	"github.com/viabilize/viabilize-auth/migrations"
	"github.com/viabilize/viabilize-auth/persistence"
)

func main() {
	reset := flag.Bool("reset", false, "roll back every migration before applying them again")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("migrate"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := &config.Config{}
	if err := config.ParseEnv(cfg); err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg.DatabaseURL, *reset, lgr); err != nil {
		lgr.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn string, reset bool, lgr *glog.BaseLogger) error {
	db, err := persistence.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	name := db.Dialect().Name()
	if reset {
		lgr.Warn("resetting schema", "dialect", name.String())
		err = migrations.Reset(ctx, db.DB, name)
	} else {
		err = migrations.Up(ctx, db.DB, name)
	}
	if err != nil {
		return err
	}

	version, err := migrations.Version(ctx, db.DB, name)
	if err != nil {
		return err
	}

	lgr.Info("schema up to date", "version", version)
	return nil
}

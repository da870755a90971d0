// Command sg is a terminal client for snapgram.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/backend/appwrite"
	"github.com/and161185/snapgram/internal/backend/pgstore"
	"github.com/and161185/snapgram/internal/config"
	"github.com/and161185/snapgram/internal/errs"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `sg CLI
Usage:
  sg [-backend appwrite|postgres] [flags] <cmd> [args]

Settings also come from SNAPGRAM_* variables and .env/.env.local files.

Commands:
  version
  migrate                                              (postgres only)
  sign-up   -name <n> -username <u> -email <e> -password <p>
  sign-in   -email <e> -password <p>                   (saves session)
  sign-out
  me
  post      -caption <c> -location <l> -tags <a,b> -file <img|->
  feed                                                 (recent posts)
  posts                                                (recently updated)
  show      -id <post>
  like      -id <post>                                 (toggles)
  save      -id <post>
  unsave    -id <saved record>
  edit      -id <post> -caption <c> -location <l> -tags <a,b> [-file <img>]
  rm        -id <post>
  preview   -id <post> -o <out.jpg> [-w 2000 -h 2000]   (postgres only)

Global flags:
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// openBackend connects the configured backend. The returned func releases it.
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (backend.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendAppwrite:
		return appwrite.New(cfg.Endpoint, cfg.ProjectID, log), func() {}, nil
	case config.BackendPostgres:
		db, err := pgstore.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		st := pgstore.New(db, pgstore.Config{SignKey: []byte(cfg.JWTKey), PublicURL: cfg.PublicURL})
		return st, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// main resolves settings, attaches the stored session and dispatches a subcommand.
func main() {
	flag.Usage = usage
	cfg, args, err := config.Load(flag.CommandLine, os.Args[1:], ".env.local", ".env")
	if err != nil {
		fail(err)
	}
	if len(args) < 1 {
		usage()
	}
	cmd := args[0]
	if cmd == "version" {
		fmt.Printf("sg %s (%s)\n", version, buildDate)
		return
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	be, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		fail(err)
	}
	defer closeBackend()

	if secret, err := loadSession(cfg.Backend, time.Now()); err == nil {
		be.UseSession(secret)
	} else if !errors.Is(err, errs.ErrNoSession) {
		logger.Warn("session file unreadable", zap.Error(err))
	}

	a := newApp(cfg, be, logger, os.Stdout, os.Stderr)
	if err := a.run(ctx, cmd, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
		}
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "version":
		fmt.Printf("eventsite %s\n", version)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	debug := false
	for _, a := range args {
		if a == "--debug" {
			debug = true
		}
	}
	log, err := newLogger(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	v, err := loadConfig()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	site := siteConfig(v)
	p := &pipeline{cfg: legacyConfig(v), dbPath: site.DatabasePath, log: log}
	switch cmd {
	case "serve":
		err = serve(ctx, site, log)
	case "discover":
		err = p.discover(ctx)
	case "scrape":
		err = p.scrape(ctx)
	case "localize":
		err = p.localize(ctx)
	case "load":
		err = p.load(ctx)
	case "import":
		err = p.importAll(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Error("command failed", zap.String("command", cmd), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serve(ctx context.Context, cfg eventsite.SiteConfig, log *zap.Logger) error {
	app := eventsite.New(cfg, views.New(views.Site{
		Name:        cfg.Name,
		Description: cfg.Description,
		Language:    cfg.Language,
	}), eventsite.WithLogger(log))
	defer func() { _ = app.Close() }()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}

func printUsage() {
	fmt.Println(`eventsite - event blog with block editor and legacy import

Usage:
  eventsite <command> [--debug]

Commands:
  serve       Run the web server
  discover    Collect event links from the legacy site
  scrape      Extract posts from the discovered links
  localize    Download post images and rewrite their URLs
  load        Replace imported posts in the database
  import      Run discover, scrape, localize and load
  version     Print the eventsite version
  help        Show this help message

Configuration is read from .env, eventsite.yaml and the environment,
e.g. ADMIN_PASSWORD, SESSION_SECRET, SITE_URL, LEGACY_SEEDS.
List variables take comma-separated values.`)
}

// Command pagebuilder runs the page section editor: it connects to the
// page-components backend, loads the configured page, and serves the live
// preview channel for embedded rendering surfaces.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/toolsuite/pagebuilder/internal/client"
	"github.com/toolsuite/pagebuilder/internal/config"
	"github.com/toolsuite/pagebuilder/internal/editor"
	"github.com/toolsuite/pagebuilder/internal/history"
	"github.com/toolsuite/pagebuilder/internal/preview"
	"github.com/toolsuite/pagebuilder/internal/sections"
	"github.com/toolsuite/pagebuilder/internal/server"
	"github.com/toolsuite/pagebuilder/internal/view"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to pagebuilder.yaml (optional)")
		pageKey    = flag.String("page", "", "page key to edit (default: first configured page)")
		listen     = flag.String("listen", "", "preview listen address (overrides config)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("pagebuilder: %v", err)
		}
		cfg = loaded
	}
	if *listen != "" {
		cfg.Preview.Listen = *listen
	}

	page := cfg.Pages[0]
	if *pageKey != "" {
		page = *pageKey
	}

	if err := run(cfg, page); err != nil {
		log.Fatalf("pagebuilder: %v", err)
	}
}

func run(cfg *config.Config, page string) error {
	opts := []client.Option{
		client.WithTimeout(cfg.GetTimeout()),
		client.WithRetry(client.RetryConfig{
			MaxRetries: cfg.GetRetryMaxRetries(),
			BaseDelay:  cfg.GetRetryBaseDelay(),
			MaxDelay:   cfg.GetRetryMaxDelay(),
			Multiplier: 2.0,
			EnableLog:  cfg.Debug,
		}),
	}
	for key, value := range cfg.Backend.Headers {
		opts = append(opts, client.WithHeader(key, value))
	}
	api, err := client.New(cfg.Backend.BaseURL, opts...)
	if err != nil {
		return err
	}

	notifiers := []editor.Notifier{editor.LogNotifier{}}

	var store *history.Store
	if cfg.History.Driver != "" {
		store, err = history.Open(cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		notifiers = append(notifiers, store.Recorder())
	}

	ed := editor.New(page, api, editor.Fanout(notifiers...))
	bridge := preview.New(ed, cfg.Preview.AllowedOrigins)
	defer bridge.Close()

	registry := sections.BuiltinRegistry()
	ctrl := view.NewListController(ed, registry)

	srv := server.New(cfg, bridge, server.NewAdminHandler(ed, ctrl, store))
	if err := srv.StartWatcher(func(path string) {
		log.Printf("[Server] asset changed: %s", path)
		bridge.BroadcastReload()
	}); err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ed.Load(loadCtx); err != nil {
		log.Printf("[Editor] initial load failed: %v", err)
	}
	cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Printf("[Server] shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"infobox/internal/config"
	"infobox/internal/pipeline"
	"infobox/internal/storage"
	"infobox/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	sch, err := cfg.Schema()
	must(err)
	transformer, err := pipeline.NewTransformer(sch)
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := watcher.NewService(db, cfg, transformer)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

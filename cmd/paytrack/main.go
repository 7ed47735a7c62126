package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/paytrack/internal/config"
	"github.com/and161185/paytrack/internal/deps"
	"github.com/and161185/paytrack/internal/server"
	"github.com/and161185/paytrack/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := config.NewConfig()
	deps, err := deps.NewDependencies(config.SecretKey, config.LogLevel)
	if err != nil {
		log.Fatalf("init dependencies: %v", err)
	}
	defer deps.Logger.Sync()

	storage, err := storage.NewPostgreStorage(ctx, config.DatabaseURI)
	if err != nil {
		deps.Logger.Fatal(err)
	}
	defer storage.Close()

	srv := server.NewServer(storage, config, deps)
	if err := srv.Run(ctx); err != nil {
		deps.Logger.Fatal(err)
	}
}

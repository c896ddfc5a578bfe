package main

import (
	"log/slog"
	"os"

	"surveybench/internal/app"
	"surveybench/internal/store"
)

func main() {
	// TODO: wire the persistent survey store once the storage backend lands;
	// until then the dev server runs on the in-memory store.
	st := store.NewMemStore()

	application, err := app.NewApplication(st)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

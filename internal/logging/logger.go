package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the process default. It runs before
// the database is up; main swaps in a MultiHandler with the Postgres sink
// once migrations have finished.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

package db

import (
	"log/slog"
	"os"
)

// RunMigrations is a lightweight entry point for tests or a small main.
// It respects the MIGRATIONS env var just like ConnectAndMigrate.
func RunMigrations() error {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil
	}
	if v := os.Getenv("MIGRATIONS"); v == "" {
		slog.Info("MIGRATIONS env not set; skipping sql migrations (AutoMigrate path used at app start)")
		return nil
	}
	slog.Info("running explicit SQL migrations")
	return runSQLMigrations(dsn)
}

// Package archive provides durable storage backends for generated schedule
// runs. All backends implement domain.ScheduleStore; the engine stays
// stateless and the service layer picks a backend through Open.
package archive

import (
	"context"
	"fmt"
	"os"

	"mazecore/pkg/domain"
)

// Open selects a ScheduleStore implementation using environment variables.
//
//	MAZECORE_ARCHIVE_DRIVER: memory|sqlite|postgres (default memory)
//	MAZECORE_ARCHIVE_SQLITE_PATH: database file when driver=sqlite (default mazecore.db)
//	MAZECORE_ARCHIVE_POSTGRES_DSN: connection string when driver=postgres
func Open(ctx context.Context) (domain.ScheduleStore, error) {
	driver := os.Getenv("MAZECORE_ARCHIVE_DRIVER")
	if driver == "" {
		driver = "memory"
	}
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(os.Getenv("MAZECORE_ARCHIVE_SQLITE_PATH"))
	case "postgres":
		return NewPostgres(ctx, os.Getenv("MAZECORE_ARCHIVE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}

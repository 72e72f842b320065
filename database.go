package translate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-translate/internal/cache"
)

// NewDB wraps an opened database handle with the bun dialect matching the
// driver name. Supported drivers are sqlite3 and postgres.
func NewDB(sqlDB *sql.DB, driver string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres", "postgresql", "pg", "pgx":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("translate: unsupported database driver %q", driver)
	}
}

// CreateSchema creates the translation tables and indexes on the given
// handle. Deployments with a migration runner should prefer
// GetMigrationsFS.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	return cache.CreateSchema(ctx, db)
}

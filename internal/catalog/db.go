package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported catalog drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// OpenDB opens a bun.DB for the configured driver. SQLite keeps personal
// sites self-contained; Postgres serves shared deployments.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("catalog: open sqlite database: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("catalog: open postgres database: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("catalog: unsupported driver %q", driver)
	}
}

// EnsureSchema creates the catalog tables when they do not exist yet. Hosts
// managing schema through SQL migration files can run the embedded migrations
// with ApplyMigrations instead.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*ArticleRecord)(nil),
		(*TagRecord)(nil),
		(*ArticleTagRecord)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("catalog: create table for %T: %w", model, err)
		}
	}
	return nil
}

// ApplyMigrations executes every .sql file in the supplied filesystem in
// lexical order. Statements are separated by semicolons at line ends.
func ApplyMigrations(ctx context.Context, db *bun.DB, migrations fs.FS) error {
	entries, err := fs.Glob(migrations, "data/sql/migrations/*.sql")
	if err != nil {
		return fmt.Errorf("catalog: list migrations: %w", err)
	}
	sort.Strings(entries)

	for _, entry := range entries {
		payload, err := fs.ReadFile(migrations, entry)
		if err != nil {
			return fmt.Errorf("catalog: read migration %s: %w", entry, err)
		}
		for _, statement := range splitStatements(string(payload)) {
			if _, err := db.ExecContext(ctx, statement); err != nil {
				return fmt.Errorf("catalog: apply migration %s: %w", entry, err)
			}
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}

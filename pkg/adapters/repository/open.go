// Package repository picks a link store backend from a database URL.
package repository

import (
	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/repository/postgres"
	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

// Open connects to dbURL and migrates the schema. postgres:// URLs use
// PostgreSQL, libsql:// and wss:// use Turso, anything else is a local
// SQLite file.
func Open(dbURL string) (ports.LinkRepository, error) {
	if postgres.IsPostgres(dbURL) {
		return postgres.NewPostgresRepository(dbURL)
	}
	return sqlite.NewSQLiteRepository(dbURL)
}

// Backend names the driver Open would choose, for logging.
func Backend(dbURL string) string {
	switch {
	case postgres.IsPostgres(dbURL):
		return "postgres"
	case sqlite.IsRemote(dbURL):
		return "libsql"
	default:
		return "sqlite"
	}
}

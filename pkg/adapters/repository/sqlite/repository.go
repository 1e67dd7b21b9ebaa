package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

// IsRemote reports whether dbURL points at a libSQL/Turso server rather than
// a local SQLite file.
func IsRemote(dbURL string) bool {
	return strings.HasPrefix(dbURL, "libsql://") ||
		strings.HasPrefix(dbURL, "wss://") ||
		(strings.HasPrefix(dbURL, "https://") && strings.Contains(dbURL, ".turso.io"))
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if IsRemote(dbURL) {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if driverName == "sqlite" {
		// One writer at a time; shared in-memory databases otherwise report SQLITE_LOCKED.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		tags TEXT,
		description TEXT,
		audio_note TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
	`
	_, err := db.Exec(query)
	return err
}

const selectColumns = `SELECT id, title, url, tags, description, audio_note, created_at FROM links`

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (domain.Link, error) {
	var l domain.Link
	var tags, description, audioNote sql.NullString
	if err := row.Scan(&l.ID, &l.Title, &l.URL, &tags, &description, &audioNote, &l.CreatedAt); err != nil {
		return l, err
	}
	l.Tags = tags.String
	l.Description = description.String
	l.AudioNote = audioNote.String
	return l, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO links (title, url, tags, description, audio_note, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		link.Title, link.URL, nullString(link.Tags), nullString(link.Description),
		nullString(link.AudioNote), link.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	link, err := scanLink(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundf("link %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Link, error) {
	return r.query(ctx, selectColumns+` ORDER BY created_at DESC, id DESC`)
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	return r.query(ctx, selectColumns+` ORDER BY id ASC`)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) Update(ctx context.Context, link *domain.Link) error {
	query := `UPDATE links SET title = ?, url = ?, tags = ?, description = ?, audio_note = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		link.Title, link.URL, nullString(link.Tags), nullString(link.Description),
		nullString(link.AudioNote), link.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res, link.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("link %d not found", id)
	}
	return nil
}

func (r *SQLiteRepository) Import(ctx context.Context, links []domain.Link) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO links (title, url, tags, description, audio_note, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, l := range links {
		created := l.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, l.Title, l.URL, nullString(l.Tags),
			nullString(l.Description), nullString(l.AudioNote), created.UTC()); err != nil {
			return 0, fmt.Errorf("import link %d (%q): %w", i, l.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(links), nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)

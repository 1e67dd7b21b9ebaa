package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

type PostgresRepository struct {
	db *sql.DB
}

// IsPostgres reports whether dbURL is a PostgreSQL connection string.
func IsPostgres(dbURL string) bool {
	return strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://")
}

func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	// Env values pasted from dashboards often carry a trailing newline.
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		tags TEXT,
		description TEXT,
		audio_note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
	`
	_, err := db.Exec(query)
	return err
}

const selectColumns = `SELECT id, title, url, tags, description, audio_note, created_at FROM links`

const insertQuery = `INSERT INTO links (title, url, tags, description, audio_note, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

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
	l.CreatedAt = l.CreatedAt.UTC()
	return l, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) Create(ctx context.Context, link *domain.Link) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	return r.db.QueryRowContext(ctx, insertQuery,
		link.Title, link.URL, nullString(link.Tags), nullString(link.Description),
		nullString(link.AudioNote), link.CreatedAt,
	).Scan(&link.ID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	link, err := scanLink(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundf("link %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]domain.Link, error) {
	return r.query(ctx, selectColumns+` ORDER BY created_at DESC, id DESC`)
}

func (r *PostgresRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	return r.query(ctx, selectColumns+` ORDER BY id ASC`)
}

func (r *PostgresRepository) query(ctx context.Context, query string) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, query)
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

func (r *PostgresRepository) Update(ctx context.Context, link *domain.Link) error {
	query := `UPDATE links SET title = $1, url = $2, tags = $3, description = $4, audio_note = $5 WHERE id = $6`

	res, err := r.db.ExecContext(ctx, query,
		link.Title, link.URL, nullString(link.Tags), nullString(link.Description),
		nullString(link.AudioNote), link.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res, link.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
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

func (r *PostgresRepository) Import(ctx context.Context, links []domain.Link) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for i, l := range links {
		created := l.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		var id int64
		if err := tx.QueryRowContext(ctx, insertQuery, l.Title, l.URL, nullString(l.Tags),
			nullString(l.Description), nullString(l.AudioNote), created.UTC()).Scan(&id); err != nil {
			return 0, fmt.Errorf("import link %d (%q): %w", i, l.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(links), nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

var _ ports.LinkRepository = (*PostgresRepository)(nil)

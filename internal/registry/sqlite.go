package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mediakit/internal/media"
	"mediakit/internal/registry/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteRegistry implements media.Registry on a SQLite database.
type SQLiteRegistry struct {
	db    *sql.DB
	path  string
	clock media.Clock
}

// Compile-time check that SQLiteRegistry implements media.Registry interface
var _ media.Registry = (*SQLiteRegistry)(nil)

// NewSQLiteRegistry opens the database at path, brings its schema up to date
// and returns a registry over it. path can be a file path or ":memory:".
// A nil clock means the real clock.
func NewSQLiteRegistry(path string, clock media.Clock) (*SQLiteRegistry, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrations.CheckStatus(db); err != nil {
		db.Close()
		return nil, err
	}
	if clock == nil {
		clock = media.RealClock{}
	}
	return &SQLiteRegistry{db: db, path: path, clock: clock}, nil
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would otherwise get its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// SQLite ships with foreign keys off.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Path returns the database location.
func (r *SQLiteRegistry) Path() string {
	return r.path
}

const upsertMediaFile = `
INSERT INTO media_files (id, uri, type, name, size, mime_type, duration_ms, local_path, is_uploaded, remote_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    uri = excluded.uri,
    type = excluded.type,
    name = excluded.name,
    size = excluded.size,
    mime_type = excluded.mime_type,
    duration_ms = excluded.duration_ms,
    local_path = excluded.local_path,
    is_uploaded = excluded.is_uploaded,
    remote_url = excluded.remote_url`

// Save inserts f, or replaces the stored record with the same ID.
// The original creation time is kept on replace.
func (r *SQLiteRegistry) Save(ctx context.Context, f *media.MediaFile) error {
	var duration sql.NullInt64
	if f.Duration != nil {
		duration = sql.NullInt64{Int64: *f.Duration, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, upsertMediaFile,
		f.ID, f.URI, string(f.Type), f.Name, f.Size, f.MimeType,
		duration, nullString(f.LocalPath), f.IsUploaded, nullString(f.RemoteURL),
		f.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving media file %s: %w", f.ID, err)
	}
	return nil
}

// MarkUploaded flags the record as uploaded and appends to its upload history.
func (r *SQLiteRegistry) MarkUploaded(ctx context.Context, id, remoteURL string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE media_files SET is_uploaded = 1, remote_url = ? WHERE id = ?`, remoteURL, id)
	if err != nil {
		return fmt.Errorf("marking %s uploaded: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking %s uploaded: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("marking %s uploaded: %w", id, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO uploads (media_file_id, remote_url, uploaded_at) VALUES (?, ?, ?)`,
		id, remoteURL, r.clock.Now().UTC()); err != nil {
		return fmt.Errorf("recording upload of %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const selectMediaFile = `
SELECT id, uri, type, name, size, mime_type, duration_ms, local_path, is_uploaded, remote_url, created_at
FROM media_files`

// Find returns the record with the given ID, or nil if there is none.
func (r *SQLiteRegistry) Find(ctx context.Context, id string) (*media.MediaFile, error) {
	row := r.db.QueryRowContext(ctx, selectMediaFile+` WHERE id = ?`, id)
	f, err := scanMediaFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding media file %s: %w", id, err)
	}
	return f, nil
}

// List returns all records, newest first.
func (r *SQLiteRegistry) List(ctx context.Context) ([]*media.MediaFile, error) {
	rows, err := r.db.QueryContext(ctx, selectMediaFile+` ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing media files: %w", err)
	}
	defer rows.Close()

	var files []*media.MediaFile
	for rows.Next() {
		f, err := scanMediaFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning media file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing media files: %w", err)
	}
	return files, nil
}

// Uploads returns the upload history of a record, oldest first.
func (r *SQLiteRegistry) Uploads(ctx context.Context, id string) ([]Upload, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT remote_url, uploaded_at FROM uploads WHERE media_file_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("listing uploads of %s: %w", id, err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.RemoteURL, &u.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// SchemaStatus reports the schema version of the database against the
// migrations embedded in the binary. The error is non-nil when they differ.
func (r *SQLiteRegistry) SchemaStatus() (migrations.Status, error) {
	st, err := migrations.ReadStatus(r.db)
	if err != nil {
		return st, err
	}
	return st, st.Err()
}

// Close closes the database connection.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMediaFile(s scanner) (*media.MediaFile, error) {
	var (
		f         media.MediaFile
		typ       string
		duration  sql.NullInt64
		localPath sql.NullString
		remoteURL sql.NullString
	)
	if err := s.Scan(&f.ID, &f.URI, &typ, &f.Name, &f.Size, &f.MimeType,
		&duration, &localPath, &f.IsUploaded, &remoteURL, &f.CreatedAt); err != nil {
		return nil, err
	}

	f.Type = media.MediaType(typ)
	if duration.Valid {
		d := duration.Int64
		f.Duration = &d
	}
	f.LocalPath = localPath.String
	f.RemoteURL = remoteURL.String
	return &f, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

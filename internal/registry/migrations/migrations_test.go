package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	for _, table := range []string{"media_files", "uploads", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestCheckStatus(t *testing.T) {
	db := openTestDB(t)

	if err := CheckStatus(db); !errors.Is(err, ErrNoVersion) {
		t.Fatalf("CheckStatus() on fresh db error = %v, want ErrNoVersion", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after migration error = %v", err)
	}

	st, err := ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if !st.Current() || st.Latest != 2 {
		t.Errorf("ReadStatus() = %+v, want current at version 2", st)
	}
}

func TestStatus_Err(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr bool
	}{
		{"current", Status{Version: 2, Latest: 2}, false},
		{"dirty", Status{Version: 2, Latest: 2, Dirty: true}, true},
		{"behind", Status{Version: 1, Latest: 2}, true},
		{"ahead", Status{Version: 3, Latest: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.status.Err()
			if (err != nil) != tt.wantErr {
				t.Errorf("Err() = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.status.Current() == tt.wantErr {
				t.Errorf("Current() = %v, disagrees with Err() = %v", tt.status.Current(), err)
			}
		})
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first MigrateUp() error = %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("second MigrateUp() error = %v", err)
	}
}

func TestSchema_Constraints(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	tests := []struct {
		name string
		stmt string
	}{
		{
			name: "unknown media type",
			stmt: `INSERT INTO media_files (id, uri, type, name, mime_type, created_at)
			       VALUES ('m1', 'u', 'hologram', 'n', 'x/y', datetime('now'))`,
		},
		{
			name: "negative size",
			stmt: `INSERT INTO media_files (id, uri, type, name, size, mime_type, created_at)
			       VALUES ('m2', 'u', 'image', 'n', -1, 'image/jpeg', datetime('now'))`,
		},
		{
			name: "upload for missing file",
			stmt: `INSERT INTO uploads (media_file_id, remote_url, uploaded_at)
			       VALUES ('missing', 'https://x', datetime('now'))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Exec(tt.stmt); err == nil {
				t.Error("insert succeeded, want constraint violation")
			}
		})
	}
}

// openTestDB opens an in-memory SQLite database with foreign keys enabled.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

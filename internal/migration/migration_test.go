package migration

import (
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/fitlog/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mapFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(nil), SQLite)

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("CurrentVersion() = %d, want 0", version)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    []int
		wantErr bool
	}{
		{
			name: "sorted by version",
			files: map[string]string{
				"002_second.sql": "SELECT 1;",
				"001_first.sql":  "SELECT 1;",
				"README.md":      "ignored",
			},
			want: []int{1, 2},
		},
		{
			name:    "missing name",
			files:   map[string]string{"001.sql": "SELECT 1;"},
			wantErr: true,
		},
		{
			name:    "non numeric version",
			files:   map[string]string{"abc_first.sql": "SELECT 1;"},
			wantErr: true,
		},
		{
			name:    "version zero",
			files:   map[string]string{"000_zero.sql": "SELECT 1;"},
			wantErr: true,
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_a.sql": "SELECT 1;",
				"01_b.sql":  "SELECT 1;",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), mapFS(tt.files), SQLite)
			got, err := runner.Migrations()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Migrations() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Migrations() returned %d, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.Version != tt.want[i] {
					t.Errorf("migration %d version = %d, want %d", i, m.Version, tt.want[i])
				}
			}
		})
	}
}

func TestApplyIsIncremental(t *testing.T) {
	db := setupTestDB(t)
	files := map[string]string{
		"001_items.sql": "CREATE TABLE items (id INTEGER PRIMARY KEY);",
	}

	applied, err := NewRunner(db, mapFS(files), SQLite).Apply(nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if applied != 1 {
		t.Errorf("Apply() = %d, want 1", applied)
	}

	files["002_tags.sql"] = "CREATE TABLE tags (id INTEGER PRIMARY KEY);"
	var logged []string
	runner := NewRunner(db, mapFS(files), SQLite)
	applied, err = runner.Apply(func(s string) { logged = append(logged, s) })
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if applied != 1 {
		t.Errorf("second Apply() = %d, want 1", applied)
	}
	if len(logged) == 0 {
		t.Error("expected progress messages")
	}
	if version, _ := runner.CurrentVersion(); version != 2 {
		t.Errorf("CurrentVersion() = %d, want 2", version)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_ok.sql":  "CREATE TABLE ok (id INTEGER);",
		"002_bad.sql": "CREATE TABLE broken (;",
	}), SQLite)

	applied, err := runner.Apply(nil)
	if err == nil {
		t.Fatal("Apply() expected error")
	}
	if applied != 1 {
		t.Errorf("Apply() = %d, want 1", applied)
	}
	if version, _ := runner.CurrentVersion(); version != 1 {
		t.Errorf("CurrentVersion() = %d, want 1", version)
	}
}

func TestValidateRejectsNewerSchema(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{"001_a.sql": "SELECT 1;"}), SQLite)
	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 9"); err != nil {
		t.Fatal(err)
	}

	if err := runner.Validate(); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("Validate() error = %v, want ErrSchemaTooNew", err)
	}
	if _, err := runner.Apply(nil); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("Apply() error = %v, want ErrSchemaTooNew", err)
	}
}

func TestBundledSQLiteMigrations(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatal(err)
	}
	db := setupTestDB(t)
	runner := NewRunner(db, sub, SQLite)
	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	for _, table := range []string{"user_profile", "meals", "workouts", "water_consumption", "sleep", "sync_queue"} {
		var n int
		err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n)
		if err != nil || n != 1 {
			t.Errorf("table %s missing (err=%v)", table, err)
		}
	}
}

package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/hwparam/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// setStoredIRVersion creates a database at path whose meta table records
// version, bypassing Open's compatibility check.
func setStoredIRVersion(t *testing.T, path, version string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	if _, err := db.Exec("INSERT INTO meta (key, value) VALUES ('ir_version', ?)", version); err != nil {
		t.Fatalf("failed to set ir_version: %v", err)
	}
}

// createTestRecord builds a record for a one-parameter set.
func createTestRecord(t *testing.T, runID, name string, depth, seq int64) ParamSetRecord {
	t.Helper()
	params, err := ir.MakeDict(ir.NA("depth", ir.MakeInteger(64, depth)))
	if err != nil {
		t.Fatalf("MakeDict() failed: %v", err)
	}
	rec, err := NewRecord(runID, name, "params.cue", params, seq)
	if err != nil {
		t.Fatalf("NewRecord() failed: %v", err)
	}
	return rec
}

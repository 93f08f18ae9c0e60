package migrations

import (
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func TestRun(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := Run(db); err != nil {
		t.Fatalf("run: %v", err)
	}
	// A second run finds nothing to apply.
	if err := Run(db); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('feeds', 'seen_items') ORDER BY name`)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		tables = append(tables, name)
	}
	if diff := cmp.Diff([]string{"feeds", "seen_items"}, tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		t.Fatalf("db version: %v", err)
	}
	if diff := cmp.Diff(int64(1), version); diff != "" {
		t.Errorf("version mismatch (-want +got):\n%s", diff)
	}
}

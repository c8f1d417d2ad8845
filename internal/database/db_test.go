package database

import (
	"path/filepath"
	"testing"
)

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analyzer.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("Exec() error: %v", err)
	}
}

func TestInMemoryRoundTrip(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t (v TEXT)"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO t (v) VALUES (?)", "hello"); err != nil {
		t.Fatal(err)
	}

	var v string
	if err := db.QueryRow("SELECT v FROM t").Scan(&v); err != nil {
		t.Fatal(err)
	}
	if v != "hello" {
		t.Errorf("got %q, want hello", v)
	}
}

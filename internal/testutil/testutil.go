// Package testutil provides shared test helpers for data directories and account databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/folio/internal/accounts"
	"github.com/starford/folio/internal/storage"
)

// TestAccounts creates a temporary SQLite account store that is automatically cleaned up.
func TestAccounts(t *testing.T) *accounts.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := accounts.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary data directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, store
}

// WriteFile writes content into dir/name, failing the test on error.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(dir+string(os.PathSeparator)+name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

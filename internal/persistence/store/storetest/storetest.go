// Package storetest opens throwaway SQLite stores for tests.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"realmtick.io/internal/persistence/store"
)

func Open(t testing.TB) *store.Store {
	t.Helper()
	s, _ := OpenFile(t)
	return s
}

// OpenFile also returns the database path, for tests that need a second
// handle on the same file.
func OpenFile(t testing.TB) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "realm.sqlite")
	s, err := store.Open(context.Background(), store.Config{
		Dialect:    store.DialectSQLite,
		SQLitePath: path,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

var triggerSeq atomic.Int64

// RejectWrites makes every insert into or update of table rows whose column
// equals value fail, on the database at path. Calling lift removes the rule;
// otherwise it lasts for the rest of the test.
func RejectWrites(t testing.TB, path, table, column, value string) (lift func()) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var names []string
	for _, op := range []string{"INSERT", "UPDATE"} {
		name := fmt.Sprintf("reject_writes_%d", triggerSeq.Add(1))
		q := fmt.Sprintf(`CREATE TRIGGER %s BEFORE %s ON %s WHEN NEW.%s = '%s'
			BEGIN SELECT RAISE(ABORT, 'write rejected'); END`, name, op, table, column, value)
		if _, err := db.ExecContext(context.Background(), q); err != nil {
			t.Fatalf("create trigger: %v", err)
		}
		names = append(names, name)
	}
	return func() {
		for _, n := range names {
			if _, err := db.ExecContext(context.Background(), "DROP TRIGGER IF EXISTS "+n); err != nil {
				t.Fatalf("drop trigger: %v", err)
			}
		}
	}
}

package store

import "testing"

func TestRebindPostgres(t *testing.T) {
	s := &Store{dialect: DialectPostgres}
	got := s.rebind("UPDATE t SET a = ? WHERE id = ? AND b = ?")
	want := "UPDATE t SET a = $1 WHERE id = $2 AND b = $3"
	if got != want {
		t.Fatalf("rebind: got %q want %q", got, want)
	}
	if q := (&Store{dialect: DialectSQLite}).rebind("a = ?"); q != "a = ?" {
		t.Fatalf("sqlite query should be untouched, got %q", q)
	}
}

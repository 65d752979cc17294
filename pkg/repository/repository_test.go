package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/bleak/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT NOT NULL UNIQUE)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestMapErrorNil(t *testing.T) {
	got := repository.MapError(nil, errNotFound, errDuplicate)
	if got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapErrorNotFound(t *testing.T) {
	got := repository.MapError(sql.ErrNoRows, errNotFound, errDuplicate)
	if !errors.Is(got, errNotFound) {
		t.Errorf("MapError(ErrNoRows) = %v, want %v", got, errNotFound)
	}
}

func TestMapErrorDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	got := repository.MapError(pgErr, errNotFound, errDuplicate)
	if !errors.Is(got, errDuplicate) {
		t.Errorf("MapError(PgError 23505) = %v, want %v", got, errDuplicate)
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	original := errors.New("some other error")
	got := repository.MapError(original, errNotFound, errDuplicate)
	if got != original {
		t.Errorf("MapError(other) = %v, want %v", got, original)
	}
}

func TestMapErrorPgNonDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	got := repository.MapError(pgErr, errNotFound, errDuplicate)
	if got != pgErr {
		t.Errorf("MapError(PgError 23503) should pass through, got %v", got)
	}
}

func TestMapErrorSQLiteConstraint(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		item string
	}{
		{"primary key", "a", "other"},
		{"unique column", "b", "first"},
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO items (id, name) VALUES (?1, ?2)`, "a", "first"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, `INSERT INTO items (id, name) VALUES (?1, ?2)`, tt.id, tt.item)
			if err == nil {
				t.Fatal("expected constraint error")
			}
			if got := repository.MapError(err, errNotFound, errDuplicate); !errors.Is(got, errDuplicate) {
				t.Errorf("MapError(%v) = %v, want %v", err, got, errDuplicate)
			}
		})
	}
}

func TestInTx(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		fail      error
		wantCount int
	}{
		{"commit", nil, 1},
		{"rollback", boom, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openSQLite(t)
			ctx := context.Background()

			err := repository.InTx(ctx, db, func(tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, `INSERT INTO items (id, name) VALUES (?1, ?2)`, "x", "x"); err != nil {
					return err
				}
				return tt.fail
			})
			if !errors.Is(err, tt.fail) {
				t.Fatalf("InTx error = %v, want %v", err, tt.fail)
			}

			count, err := repository.QueryCount(ctx, db, `SELECT COUNT(*) FROM items`, nil)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if count != tt.wantCount {
				t.Errorf("rows = %d, want %d", count, tt.wantCount)
			}
		})
	}
}

func TestQueryManyAndExecExpectOne(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := repository.ExecExpectOne(ctx, db, `INSERT INTO items (id, name) VALUES (?1, ?2)`, id, "n-"+id); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	ids, err := repository.QueryMany(ctx, db, `SELECT id FROM items ORDER BY id`, nil, func(s repository.Scanner) (string, error) {
		var id string
		err := s.Scan(&id)
		return id, err
	})
	if err != nil {
		t.Fatalf("QueryMany: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("ids = %v, want [a b]", ids)
	}

	err = repository.ExecExpectOne(ctx, db, `DELETE FROM items WHERE id = ?1`, "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ExecExpectOne(no rows) = %v, want sql.ErrNoRows", err)
	}

	err = repository.ExecExpectOne(ctx, db, `UPDATE items SET name = name || '-x'`)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ExecExpectOne(two rows) = %v, want row count error", err)
	}

	_, err = repository.QueryOne(ctx, db, `SELECT id FROM items WHERE id = ?1`, []any{"missing"}, func(s repository.Scanner) (string, error) {
		var id string
		err := s.Scan(&id)
		return id, err
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("QueryOne(missing) = %v, want sql.ErrNoRows", err)
	}
}

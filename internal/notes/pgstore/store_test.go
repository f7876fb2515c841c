package pgstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"

	"notehub/internal/notes"
	"notehub/internal/notes/notestest"
	"notehub/internal/notes/pgstore"
)

// Set NOTEHUB_TEST_POSTGRES_URL to a disposable database to run these tests.
const envTestURL = "NOTEHUB_TEST_POSTGRES_URL"

func openStore(t *testing.T) notes.Store {
	t.Helper()
	url := os.Getenv(envTestURL)
	if url == "" {
		t.Skipf("%s not set", envTestURL)
	}
	ctx := context.Background()
	store, err := pgstore.Open(ctx, url)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := conn.Exec(ctx, "TRUNCATE notes"); err != nil {
		t.Fatalf("truncate notes: %v", err)
	}
	_ = conn.Close(ctx)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	if os.Getenv(envTestURL) == "" {
		t.Skipf("%s not set", envTestURL)
	}
	notestest.Run(t, openStore)
}

func TestMigrateIsIdempotent(t *testing.T) {
	url := os.Getenv(envTestURL)
	if url == "" {
		t.Skipf("%s not set", envTestURL)
	}
	if err := pgstore.Migrate(url); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := pgstore.Migrate(url); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

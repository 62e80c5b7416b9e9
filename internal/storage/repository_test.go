package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T, dbPath string) *TokenRepository {
	t.Helper()
	repo, err := NewTokenRepository(dbPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestTokenRoundTrip(t *testing.T) {
	repo := newTestRepository(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()

	token, err := repo.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}

	if err := repo.Set(ctx, "sid-1", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	token, err = repo.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q", token)
	}

	// Overwrite replaces the cell.
	if err := repo.Set(ctx, "sid-1", "tok-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	token, _ = repo.Get(ctx, "sid-1")
	if token != "tok-2" {
		t.Fatalf("token after overwrite = %q", token)
	}

	if err := repo.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	token, _ = repo.Get(ctx, "sid-1")
	if token != "" {
		t.Fatalf("token after delete = %q", token)
	}

	// Deleting an absent cell is fine.
	if err := repo.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestTokensAreScopedBySession(t *testing.T) {
	repo := newTestRepository(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()

	if err := repo.Set(ctx, "sid-a", "tok-a"); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := repo.Set(ctx, "sid-b", "tok-b"); err != nil {
		t.Fatalf("set b: %v", err)
	}

	if tok, _ := repo.Get(ctx, "sid-a"); tok != "tok-a" {
		t.Fatalf("sid-a token = %q", tok)
	}
	if tok, _ := repo.Get(ctx, "sid-b"); tok != "tok-b" {
		t.Fatalf("sid-b token = %q", tok)
	}

	if err := repo.Delete(ctx, "sid-a"); err != nil {
		t.Fatalf("delete a: %v", err)
	}
	if tok, _ := repo.Get(ctx, "sid-b"); tok != "tok-b" {
		t.Fatalf("deleting sid-a clobbered sid-b: %q", tok)
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	repo, err := NewTokenRepository(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Set(ctx, "sid-1", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newTestRepository(t, dbPath)
	token, err := reopened.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token lost across restart: %q", token)
	}
}

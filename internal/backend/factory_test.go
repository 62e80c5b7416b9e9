package backend

import (
	"context"
	"testing"
)

func TestCreateBackendMemory(t *testing.T) {
	f := NewFactory(nil)
	result, err := f.CreateBackend(context.Background(), Config{
		Type:         MemoryBackend,
		SeedEmail:    "demo@test.local",
		SeedPassword: "demo123",
	})
	if err != nil {
		t.Fatalf("create memory backend: %v", err)
	}
	if result.Backend == nil {
		t.Fatalf("nil backend")
	}

	// The seeded demo account must be usable right away.
	token, err := result.Backend.Login(context.Background(), "demo@test.local", "demo123")
	if err != nil {
		t.Fatalf("demo login: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
}

func TestCreateBackendREST(t *testing.T) {
	f := NewFactory(nil)
	result, err := f.CreateBackend(context.Background(), Config{
		Type:    RESTBackend,
		BaseURL: "http://localhost:8000/api/v1",
	})
	if err != nil {
		t.Fatalf("create rest backend: %v", err)
	}
	if result.Backend == nil {
		t.Fatalf("nil backend")
	}
}

func TestCreateBackendRESTRequiresURL(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: RESTBackend}); err == nil {
		t.Fatalf("expected error for missing base URL")
	}
}

func TestCreateBackendInvalidType(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatalf("expected error for unknown backend type")
	}
}

func TestBackendTypeIsValid(t *testing.T) {
	if !RESTBackend.IsValid() || !MemoryBackend.IsValid() {
		t.Fatalf("known types reported invalid")
	}
	if BackendType("other").IsValid() {
		t.Fatalf("unknown type reported valid")
	}
}

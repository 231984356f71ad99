package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestFetch(t *testing.T) {
	content := "order_id,order_date\nO001,2023-01-15\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data", "sales.csv")
	if err := Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(got) != content {
		t.Errorf("downloaded content = %q, want %q", got, content)
	}
}

func TestFetch_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sales.csv")
	if err := Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch() should retry 5xx responses, got error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3", calls.Load())
	}
}

func TestFetch_PermanentClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sales.csv")
	if err := Fetch(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("Fetch() should fail on 404")
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (no retries on 4xx)", calls.Load())
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no file should be written on failure")
	}
}

func TestFetch_DoesNotClobberOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(dest, []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Fetch(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("Fetch() should fail on 403")
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "existing" {
		t.Errorf("existing dataset was overwritten: %q", got)
	}
}

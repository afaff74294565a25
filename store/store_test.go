package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
)

// storeUnderTest runs the shared contract against any Store implementation.
func storeUnderTest(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, "a", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("Get = %q", got)
	}

	// Put replaces.
	if err := s.Put(ctx, "a", []byte("two")); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	if got, _ := s.Get(ctx, "a"); string(got) != "two" {
		t.Errorf("Get after replace = %q", got)
	}

	if err := s.Put(ctx, "b", []byte("three")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("List = %v", ids)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get deleted = %v, want ErrNotFound", err)
	}
	// Deleting a missing id is not an error.
	if err := s.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestMemory_Contract(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	storeUnderTest(t, s)
}

func TestMemory_CopiesBytes(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	data := []byte("snapshot")
	if err := s.Put(ctx, "a", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "snapshot" {
		t.Fatalf("stored bytes aliased caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "a")
	if string(again) != "snapshot" {
		t.Fatalf("returned bytes aliased stored slice: %q", again)
	}
}

func TestMemory_CancelledContext(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Put(ctx, "a", []byte("x")); err == nil {
		t.Error("Put with cancelled context must fail")
	}
	if _, err := s.Get(ctx, "a"); err == nil {
		t.Error("Get with cancelled context must fail")
	}
}

func TestSQLite_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	storeUnderTest(t, s)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Put(ctx, "keep", []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(ctx, "keep")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Get = %q", got)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("want error for empty path")
	}
}

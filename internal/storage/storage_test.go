package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestComputeSHA256(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := ComputeSHA256([]byte("abc")); got != want {
		t.Fatalf("ComputeSHA256 = %s, want %s", got, want)
	}
	if len(ComputeSHA256(nil)) != 64 {
		t.Fatal("expected a 64-char hex digest for empty input")
	}
}

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	path, err := s.Save([]byte("payload"), "photo.jpg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasSuffix(path, "_photo.jpg") {
		t.Fatalf("expected a uuid-prefixed filename, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected the file on disk, got %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected stored bytes to round-trip, got %q", data)
	}

	// A path-traversal filename is reduced to its base name.
	path, err = s.Save([]byte("x"), "../../etc/passwd")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(path, "..") {
		t.Fatalf("expected traversal segments stripped, got %s", path)
	}

	// Same name twice never collides.
	p1, _ := s.Save([]byte("a"), "dup.png")
	p2, _ := s.Save([]byte("b"), "dup.png")
	if p1 == p2 {
		t.Fatalf("expected unique paths for repeated filenames, got %s twice", p1)
	}
}

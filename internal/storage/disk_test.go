package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutWritesAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "http://localhost:8080/files/")

	url, err := store.Put(t.Context(), "user-1/1700000000000_abc.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/files/user-1/1700000000000_abc.pdf" {
		t.Errorf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(root, "user-1", "1700000000000_abc.pdf"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}
}

func TestPutOverwrites(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/files")
	if _, err := store.Put(t.Context(), "a/b.txt", strings.NewReader("one")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put(t.Context(), "a/b.txt", strings.NewReader("two")); err != nil {
		t.Fatal(err)
	}
	p, _ := store.Path("a/b.txt")
	data, _ := os.ReadFile(p)
	if string(data) != "two" {
		t.Errorf("content = %q, want two", data)
	}
}

func TestPathRejectsEscapes(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/files")
	for _, key := range []string{"", "../etc/passwd", "a/../../b", `a\b`, "/"} {
		if _, err := store.Path(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Path(%q) err = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestURLEscapesSegments(t *testing.T) {
	store := NewDiskStore("/tmp", "https://cdn.example.com/files")
	if got := store.URL("u1/relatório final.pdf"); got != "https://cdn.example.com/files/u1/relat%C3%B3rio%20final.pdf" {
		t.Errorf("URL = %q", got)
	}
}

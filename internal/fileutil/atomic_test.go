package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "database.json")
	testData := []byte(`{"users":{}}`)

	if err := WriteFileAtomic(testFile, testData, 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("File content mismatch: got %q, want %q", data, testData)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("File permissions mismatch: got %o, want %o", info.Mode().Perm(), 0o600)
	}

	assertOnlyFile(t, tmpDir, "database.json")
}

func TestWriteAtomicOverwrite(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "state.json")

	if err := WriteFileAtomic(testFile, []byte("initial"), 0o644); err != nil {
		t.Fatalf("Initial write failed: %v", err)
	}
	err := WriteAtomic(testFile, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, "updated content")
		return err
	})
	if err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	data, ok, err := ReadFileIfExists(testFile)
	if err != nil || !ok {
		t.Fatalf("ReadFileIfExists: ok=%v err=%v", ok, err)
	}
	if string(data) != "updated content" {
		t.Errorf("File content mismatch: got %q", data)
	}
}

func TestWriteAtomicFailureKeepsOriginal(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "state.json")
	if err := WriteFileAtomic(testFile, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := WriteAtomic(testFile, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the write error, got %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("Failed write replaced the file: %q", data)
	}
	assertOnlyFile(t, tmpDir, "state.json")
}

func TestWriteFileAtomicInvalidDir(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic("/nonexistent/dir/test.txt", []byte("data"), 0o644)
	if err == nil {
		t.Error("Expected error when writing to non-existent directory")
	}
}

func TestReadFileIfExistsMissing(t *testing.T) {
	t.Parallel()

	data, ok, err := ReadFileIfExists(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil || ok || data != nil {
		t.Errorf("Expected missing file, got data=%q ok=%v err=%v", data, ok, err)
	}
}

func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != name {
			t.Errorf("Unexpected file in directory: %s", entry.Name())
		}
	}
}

package vault

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFSVault(t *testing.T) (*FileSystemVault, string) {
	t.Helper()
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	return v, root
}

func TestNewFileSystemVault(t *testing.T) {
	_, root := newTestFSVault(t)
	info, err := os.Stat(filepath.Join(root, "snapshots"))
	if err != nil {
		t.Fatalf("snapshots directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("snapshots path is not a directory")
	}
}

func TestFileSystemVault_PutAndGetSnapshot(t *testing.T) {
	ctx := context.Background()
	v, root := newTestFSVault(t)

	content := "sealed snapshot bytes"
	if err := v.PutSnapshot(ctx, "user-1", strings.NewReader(content), int64(len(content)), 1700000000); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "snapshots", "user-1.age")); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}

	var buf bytes.Buffer
	if err := v.GetSnapshot(ctx, "user-1", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != content {
		t.Errorf("GetSnapshot() = %q, want %q", buf.String(), content)
	}

	version, err := v.SnapshotVersion(ctx, "user-1")
	if err != nil {
		t.Fatalf("SnapshotVersion() error = %v", err)
	}
	if version != 1700000000 {
		t.Errorf("SnapshotVersion() = %d, want 1700000000", version)
	}
}

func TestFileSystemVault_Missing(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestFSVault(t)

	var buf bytes.Buffer
	if err := v.GetSnapshot(ctx, "ghost", &buf); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("GetSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
	version, err := v.SnapshotVersion(ctx, "ghost")
	if err != nil || version != 0 {
		t.Errorf("SnapshotVersion() = (%d, %v), want (0, nil)", version, err)
	}
}

func TestFileSystemVault_AtomicWrite(t *testing.T) {
	ctx := context.Background()
	v, root := newTestFSVault(t)

	if err := v.PutSnapshot(ctx, "u", strings.NewReader("good"), 4, 1); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	// A short write must leave the previous snapshot in place.
	if err := v.PutSnapshot(ctx, "u", strings.NewReader("bad"), 99, 2); err == nil {
		t.Fatal("PutSnapshot() expected size mismatch error")
	}

	var buf bytes.Buffer
	if err := v.GetSnapshot(ctx, "u", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != "good" {
		t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "good")
	}
	if version, _ := v.SnapshotVersion(ctx, "u"); version != 1 {
		t.Errorf("SnapshotVersion() = %d, want 1", version)
	}

	entries, err := os.ReadDir(filepath.Join(root, "snapshots"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	ctx := context.Background()
	v, root := newTestFSVault(t)

	if err := v.ValidateSetup(ctx); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}

	if err := os.RemoveAll(filepath.Join(root, "snapshots")); err != nil {
		t.Fatal(err)
	}
	if err := v.ValidateSetup(ctx); err == nil {
		t.Error("ValidateSetup() expected error after removing snapshots dir")
	}
}

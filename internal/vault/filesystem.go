package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hg-go/internal/hg"
)

// FileSystemVault stores snapshots as files:
//
//	<root>/
//	  snapshots/
//	    <userID>.age      (sealed snapshot)
//	    <userID>.version  (version marker)
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
}

var _ hg.Vault = (*FileSystemVault)(nil)

// NewFileSystemVault creates a filesystem vault rooted at root.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotsDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}
	return &FileSystemVault{name: name, root: root, snapshotsDir: snapshotsDir}, nil
}

// PutSnapshot writes the snapshot atomically, then its version marker.
func (v *FileSystemVault) PutSnapshot(ctx context.Context, userID string, r io.Reader, size int64, version int64) error {
	if err := writeAtomic(v.snapshotPath(userID), r, size); err != nil {
		return err
	}
	marker := strconv.FormatInt(version, 10)
	return writeAtomic(v.versionPath(userID), strings.NewReader(marker), int64(len(marker)))
}

func (v *FileSystemVault) GetSnapshot(ctx context.Context, userID string, w io.Writer) error {
	f, err := os.Open(v.snapshotPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w for user %s", ErrSnapshotNotFound, userID)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// SnapshotVersion returns 0 if no version file exists.
func (v *FileSystemVault) SnapshotVersion(ctx context.Context, userID string) (int64, error) {
	data, err := os.ReadFile(v.versionPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup(ctx context.Context) error {
	for _, dir := range []string{v.root, v.snapshotsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

func (v *FileSystemVault) snapshotPath(userID string) string {
	return filepath.Join(v.snapshotsDir, filepath.Base(userID)+".age")
}

func (v *FileSystemVault) versionPath(userID string) string {
	return filepath.Join(v.snapshotsDir, filepath.Base(userID)+".version")
}

// writeAtomic replaces dest with exactly size bytes from r. dest is either
// the old content or the new one, never a partial write.
func writeAtomic(dest string, r io.Reader, size int64) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", filepath.Base(dest), err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(dest), err)
	}
	if n != size {
		return fmt.Errorf("writing %s: got %d bytes, want %d", filepath.Base(dest), n, size)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", filepath.Base(dest), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(dest), err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(dest), err)
	}
	return nil
}

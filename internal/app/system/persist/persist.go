// Package persist provides atomic whole-file JSON snapshots for the
// alert and contact collections.
//
// Each collection is one JSON file under the data directory. A save
// marshals the full collection, writes it to a uniquely named temp file
// in the same directory, and renames it over the snapshot, so a crash
// mid-write never leaves a truncated file visible to a later load.
// Writers are serialized by a mutex within the process and an advisory
// flock across processes.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// File is one durable JSON snapshot.
type File struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	logger *zap.Logger
}

// NewFile creates a snapshot handle for path. The parent directory is
// created if missing. The snapshot file itself is created lazily on the
// first Save.
func NewFile(path string, logger *zap.Logger) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &File{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}, nil
}

// Path returns the snapshot file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the last durably saved snapshot into v.
//
// A missing or corrupt file is not an error: v is left at its default
// and nil is returned. The panic submission path must stay available
// even when a snapshot is damaged, so corruption is logged and
// swallowed rather than surfaced.
func (f *File) Load(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading snapshot %s: %w", f.path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		f.logger.Warn("snapshot is corrupt, starting from empty collection",
			zap.String("path", f.path),
			zap.Error(err))
		return nil
	}
	return nil
}

// Save atomically replaces the snapshot with v.
//
// The write goes to a temp file in the same directory (same filesystem,
// so the rename is atomic), is synced, then renamed over the snapshot.
// Failures are returned to the caller; the previous snapshot stays
// intact.
func (f *File) Save(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", f.path, err)
	}

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("locking snapshot %s: %w", f.path, err)
	}
	defer func() {
		if err := f.lock.Unlock(); err != nil {
			f.logger.Warn("failed to release snapshot lock",
				zap.String("path", f.path),
				zap.Error(err))
		}
	}()

	tmp := f.path + ".tmp-" + uuid.NewString()
	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing snapshot %s: %w", f.path, err)
	}
	return nil
}

func writeAndSync(path string, data []byte) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("syncing temp snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rivalwatch/internal/domain"
	"rivalwatch/internal/ports"
)

const (
	dailyDirName  = "daily"
	indexFileName = "index.json"
)

// FileStore publishes digest artifacts under a data directory, one file per
// generation date, and keeps the latest pointer in index.json. Artifacts are
// append-only; only the pointer record ever changes meaning.
type FileStore struct {
	dataDir string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore roots the artifact set at dataDir.
func NewFileStore(dataDir string) *FileStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &FileStore{dataDir: dataDir}
}

type pointerRecord struct {
	Latest string `json:"latest"`
}

// Publish writes the digest keyed by its date, then swaps the latest pointer.
// A same-day rerun replaces the artifact. The pointer is rewritten only after
// the artifact rename returns, so a reader following index.json never lands on
// a partially written file; if the artifact write fails the pointer keeps
// referencing the previous artifact.
func (s *FileStore) Publish(ctx context.Context, d domain.Digest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.Date == "" {
		return "", fmt.Errorf("publish: digest date is empty")
	}

	dailyDir := filepath.Join(s.dataDir, dailyDirName)
	if err := os.MkdirAll(dailyDir, 0o755); err != nil {
		return "", fmt.Errorf("create daily dir: %w", err)
	}

	payload, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal digest: %w", err)
	}

	artifactPath := filepath.Join(dailyDir, d.Date+".json")
	if err := writeFileAtomic(artifactPath, payload); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	pointer, err := json.MarshalIndent(pointerRecord{Latest: "./data/daily/" + d.Date + ".json"}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal pointer: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dataDir, indexFileName), pointer); err != nil {
		return "", fmt.Errorf("write pointer: %w", err)
	}

	return artifactPath, nil
}

// Latest resolves the pointer record and loads the digest it references.
func (s *FileStore) Latest(ctx context.Context) (domain.Digest, error) {
	if err := ctx.Err(); err != nil {
		return domain.Digest{}, err
	}

	raw, err := os.ReadFile(filepath.Join(s.dataDir, indexFileName))
	if err != nil {
		return domain.Digest{}, fmt.Errorf("read pointer: %w", err)
	}

	var pointer pointerRecord
	if err := json.Unmarshal(raw, &pointer); err != nil {
		return domain.Digest{}, fmt.Errorf("parse pointer: %w", err)
	}
	if pointer.Latest == "" {
		return domain.Digest{}, fmt.Errorf("pointer record is empty")
	}

	artifactPath := filepath.Join(s.dataDir, dailyDirName, filepath.Base(pointer.Latest))
	raw, err = os.ReadFile(artifactPath)
	if err != nil {
		return domain.Digest{}, fmt.Errorf("read artifact: %w", err)
	}

	var d domain.Digest
	if err := json.Unmarshal(raw, &d); err != nil {
		return domain.Digest{}, fmt.Errorf("parse artifact %s: %w", artifactPath, err)
	}
	return d, nil
}

// writeFileAtomic lands payload under path via a temp file, fsync and rename,
// so a crash mid-write never leaves a truncated file at the target.
func writeFileAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ComputeSHA256 hashes the uploaded bytes for chain of custody. Taken
// before any processing so the record proves what was analyzed.
func ComputeSHA256(fileBytes []byte) string {
	sum := sha256.Sum256(fileBytes)
	return hex.EncodeToString(sum[:])
}

// LocalStore writes uploaded media to a local directory. Filenames are
// prefixed with a UUID so repeated uploads of the same name never collide.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the bytes and returns the stored path.
func (s *LocalStore) Save(fileBytes []byte, filename string) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.New(), filepath.Base(filename))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// Package cache stores completed analysis results on disk so clients can
// fetch them again by job id.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

type Store[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T) error
}

type FileStore[T any] struct {
	dir string
}

func NewFileStore[T any](baseDir, subDir string) *FileStore[T] {
	return &FileStore[T]{dir: filepath.Join(baseDir, subDir)}
}

// Get loads an entry. Entries whose checksum no longer matches are
// treated as missing.
func (fs *FileStore[T]) Get(key string) (T, bool) {
	var zero T
	path := filepath.Join(fs.dir, key+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return zero, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		return zero, false
	}

	if entry.Checksum != checksum(entry.Data) {
		return zero, false
	}

	return entry.Data, true
}

// Set writes an entry atomically via a temp file rename.
func (fs *FileStore[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %v", err)
	}

	entry := Entry[T]{
		Data:      data,
		CreatedAt: time.Now(),
		Checksum:  checksum(data),
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal store entry: %v", err)
	}

	path := filepath.Join(fs.dir, key+".json")
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp store file: %v", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp store file: %v", err)
	}

	return nil
}

func checksum[T any](data T) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return hex.EncodeToString(hash[:])
}

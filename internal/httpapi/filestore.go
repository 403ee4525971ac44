package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore persists uploaded files under {base_dir}/{file_id}/{filename}
// with a sibling metadata.json per spec.md §6, grounded on
// internal/feedback's atomic-file-replace persistence pattern, one
// metadata.json per file rather than one shared index.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore returns a FileStore rooted at baseDir, creating it if
// it does not already exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("httpapi: create base dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Save writes a freshly uploaded file's bytes to disk under a new
// file id and persists its FileInfo.
func (s *FileStore) Save(filename, description, contentType string, content io.Reader) (FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileID := uuid.NewString()
	dir := filepath.Join(s.baseDir, fileID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FileInfo{}, fmt.Errorf("httpapi: create file dir: %w", err)
	}

	dest := filepath.Join(dir, filename)
	f, err := os.Create(dest)
	if err != nil {
		return FileInfo{}, fmt.Errorf("httpapi: create file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return FileInfo{}, fmt.Errorf("httpapi: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return FileInfo{}, fmt.Errorf("httpapi: close file: %w", err)
	}

	info := FileInfo{
		FileID:      fileID,
		Filename:    filename,
		Description: description,
		ContentType: contentType,
		UploadedAt:  time.Now(),
		Path:        dest,
	}
	if err := writeMetadata(dir, info); err != nil {
		return FileInfo{}, err
	}
	return info, nil
}

// Get reads a file's persisted metadata.
func (s *FileStore) Get(fileID string) (FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readMetadata(filepath.Join(s.baseDir, fileID))
}

// List reads the metadata of every stored file, sorted by upload time
// descending (most recent first).
func (s *FileStore) List() ([]FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("httpapi: list files: %w", err)
	}

	var infos []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := readMetadata(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UploadedAt.After(infos[j].UploadedAt)
	})
	return infos, nil
}

// Delete removes a stored file's directory entirely, used by DELETE
// /session/{id} when delete_file is set.
func (s *FileStore) Delete(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(filepath.Join(s.baseDir, fileID))
}

func writeMetadata(dir string, info FileInfo) error {
	path := filepath.Join(dir, "metadata.json")
	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("httpapi: marshal metadata: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("httpapi: write metadata: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("httpapi: replace metadata: %w", err)
	}
	return nil
}

func readMetadata(dir string) (FileInfo, error) {
	payload, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return FileInfo{}, fmt.Errorf("httpapi: read metadata: %w", err)
	}
	var info FileInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return FileInfo{}, fmt.Errorf("httpapi: unmarshal metadata: %w", err)
	}
	return info, nil
}

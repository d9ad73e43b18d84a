package driveindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore keeps each index as <dir>/<userID>.json. Writes go to a temp file
// in the same directory followed by a rename, so a reader sees either the old
// or the new snapshot.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Path(userID string) string {
	return filepath.Join(s.dir, userID+".json")
}

func (s *FileStore) Load(ctx context.Context, userID string) (*Index, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if index.UserID == "" {
		index.UserID = userID
	}
	return &index, nil
}

func (s *FileStore) Save(ctx context.Context, index *Index) error {
	if index == nil {
		return errors.New("nil index")
	}
	if err := validateUserID(index.UserID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	finalPath := s.Path(index.UserID)
	tempPath := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", index.UserID, uuid.NewString()))

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *FileStore) Exists(ctx context.Context, userID string) (bool, error) {
	if err := validateUserID(userID); err != nil {
		return false, err
	}
	_, err := os.Stat(s.Path(userID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *FileStore) Delete(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := os.Remove(s.Path(userID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

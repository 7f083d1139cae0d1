package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cryptowallet/internal/domain"
)

// usersDocument is the on-disk layout of the accounts file
type usersDocument struct {
	Users []domain.UserRecord `json:"users"`
}

// UserFileRepository stores every account in a single JSON document
type UserFileRepository struct {
	path string
}

// NewUserFileRepository creates a file-backed UserRepository
func NewUserFileRepository(path string) domain.UserRepository {
	return &UserFileRepository{path: path}
}

// LoadAll reads every account from the file.
// A missing file is created empty so the first shutdown has somewhere to write.
func (r *UserFileRepository) LoadAll(_ context.Context) ([]domain.UserRecord, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.write(usersDocument{Users: []domain.UserRecord{}}); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var doc usersDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode accounts file: %w", err)
	}

	return doc.Users, nil
}

// SaveAll replaces the file contents with records
func (r *UserFileRepository) SaveAll(_ context.Context, records []domain.UserRecord) error {
	if records == nil {
		records = []domain.UserRecord{}
	}
	return r.write(usersDocument{Users: records})
}

// write replaces the file through a temporary sibling so a crash never leaves it half written
func (r *UserFileRepository) write(doc usersDocument) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create accounts directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace accounts file: %w", err)
	}

	return nil
}

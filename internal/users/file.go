package users

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/checktrack/checktrack/internal/model"
)

// FileName is the user list inside the data directory.
const FileName = "users.yaml"

type usersFile struct {
	Users []model.User `yaml:"users"`
}

// ReadFile loads users.yaml. A missing file is an empty list.
func ReadFile(path string) ([]model.User, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing users: %w", err)
	}
	return f.Users, nil
}

// WriteFile saves users.yaml with owner-only permissions.
func WriteFile(path string, list []model.User) error {
	data, err := yaml.Marshal(usersFile{Users: list})
	if err != nil {
		return fmt.Errorf("marshaling users: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing users: %w", err)
	}
	return nil
}

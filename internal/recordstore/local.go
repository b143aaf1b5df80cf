package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	appErr "github.com/memento-app/memento-auth/internal/pkg/errors"
	"github.com/memento-app/memento-auth/internal/model"
)

type localConfig struct {
	Dir string `json:"dir"`
}

// localStore keeps one <email>.json per user under a directory. Used for
// local development and tests; the layout mirrors the s3 backend.
type localStore struct {
	dir string
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args interface{}) (Store, error) {
	config := &localConfig{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("local store dir is required")
	}
	return &localStore{dir: config.Dir}, nil
}

func (s *localStore) EnsureNamespace(ctx context.Context) error {
	_ = ctx
	return os.MkdirAll(s.dir, 0o755)
}

func (s *localStore) Exists(ctx context.Context, email string) (bool, error) {
	_ = ctx
	path, err := s.recordPath(email)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat record: %w", err)
	}
	return true, nil
}

func (s *localStore) Write(ctx context.Context, user *model.User) error {
	_ = ctx
	path, err := s.recordPath(user.Email)
	if err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (s *localStore) Create(ctx context.Context, user *model.User) error {
	_ = ctx
	path, err := s.recordPath(user.Email)
	if err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return appErr.ErrConflict
		}
		return fmt.Errorf("create record: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write record: %w", err)
	}
	return out.Close()
}

func (s *localStore) Read(ctx context.Context, email string) (*model.User, error) {
	_ = ctx
	path, err := s.recordPath(email)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErr.ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	user := &model.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return user, nil
}

func (s *localStore) recordPath(email string) (string, error) {
	name, err := recordFileName(email)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

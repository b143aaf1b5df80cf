package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/memento-app/memento-auth/internal/config"
	"github.com/memento-app/memento-auth/internal/model"
)

// Store maps an email address to exactly one JSON user record in a
// hierarchical blob namespace. The store owns the key derivation
// (email -> file name) and the serialization format; nothing else touches
// storage directly.
type Store interface {
	// EnsureNamespace idempotently creates the container and directory that
	// scope all record files. "Already exists" is success.
	EnsureNamespace(ctx context.Context) error
	// Exists reports whether a record file is present for the email.
	// Absence is a normal false result, not an error.
	Exists(ctx context.Context, email string) (bool, error)
	// Write serializes the record and overwrites the full object for its
	// email. The write is durable and visible to subsequent reads on return.
	Write(ctx context.Context, user *model.User) error
	// Create is a conditional create-if-absent Write. It fails with
	// ErrConflict when a record already exists for the email, closing the
	// check-then-write race between concurrent signups.
	Create(ctx context.Context, user *model.User) error
	// Read returns the decoded record, or ErrNotFound when the key is
	// absent. Any other backend failure propagates as a generic error.
	Read(ctx context.Context, email string) (*model.User, error)
}

type Factory func(args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.RecordStoreConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("record_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported record store type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("store config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode store config: %w", err)
	}
	return nil
}

// recordFileName derives the per-user file name. Emails are the storage key
// verbatim; path separators would escape the directory and are rejected.
func recordFileName(email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	if strings.Contains(email, "/") || strings.Contains(email, "\\") {
		return "", fmt.Errorf("invalid record key")
	}
	return email + ".json", nil
}

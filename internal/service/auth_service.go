package service

import (
	"context"
	"fmt"
	"time"

	"github.com/memento-app/memento-auth/internal/model"
	appErr "github.com/memento-app/memento-auth/internal/pkg/errors"
	"github.com/memento-app/memento-auth/internal/pkg/jwt"
	"github.com/memento-app/memento-auth/internal/pkg/password"
	"github.com/memento-app/memento-auth/internal/recordstore"
)

type AuthService struct {
	records   recordstore.Store
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(records recordstore.Store, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{records: records, jwtSecret: secret, jwtTTL: ttl}
}

// Signup creates the user record. It fails with ErrConflict when a record
// already exists for the email; the conditional Create also surfaces
// ErrConflict when a concurrent signup wins between the existence check and
// the write.
func (s *AuthService) Signup(ctx context.Context, name, email, plainPassword, dob string) error {
	exists, err := s.records.Exists(ctx, email)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists {
		return appErr.ErrConflict
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:         name,
		Email:        email,
		DOB:          dob,
		PasswordHash: hash,
	}
	if err := s.records.Create(ctx, user); err != nil {
		return err
	}
	return nil
}

// Signin verifies the credentials and returns a signed token. Unknown email
// and wrong password both map to ErrUnauthorized so callers cannot tell
// which part was wrong.
func (s *AuthService) Signin(ctx context.Context, email, plainPassword string) (string, error) {
	user, err := s.records.Read(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return "", appErr.ErrUnauthorized
		}
		return "", fmt.Errorf("read user: %w", err)
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// Profile returns the outward view of the record: name, email, dob. The
// password hash never leaves the service layer.
func (s *AuthService) Profile(ctx context.Context, email string) (*model.Profile, error) {
	user, err := s.records.Read(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrNotFound
		}
		return nil, fmt.Errorf("read user: %w", err)
	}
	return user.Profile(), nil
}

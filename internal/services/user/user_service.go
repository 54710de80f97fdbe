package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo *UserRepo
}

func NewUserService(repo *UserRepo) *UserService {
	return &UserService{repo: repo}
}

// Register creates an account with the global USER role. The ADMIN role is
// only ever granted by administrative override, never at registration.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, perrors.NewErrBadInput("Name, email and password are required", errors.New("missing registration fields"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to hash password", err)
	}

	u, err := s.repo.Create(ctx, req.Name, strings.ToLower(req.Email), string(hash))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, perrors.NewErrConflict("An account with this email already exists", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to create user", err)
	}

	return u, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to look up user", err)
	}
	if u == nil {
		return nil, perrors.NewErrUnauthenticated("Invalid credentials", errors.New("unknown email"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, perrors.NewErrUnauthenticated("Invalid credentials", errors.New("password mismatch"))
	}

	return u, nil
}

// EnsureSSOUser returns the account behind a federated login, creating it
// on first sign-in. The random password hash makes the account unusable
// for password logins.
func (s *UserService) EnsureSSOUser(ctx context.Context, email, name string) (*User, error) {
	email = strings.ToLower(email)

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to look up user", err)
	}
	if u != nil {
		return u, nil
	}

	if name == "" {
		name = email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to hash password", err)
	}

	u, err = s.repo.Create(ctx, name, email, string(hash))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Lost a first-login race; the row exists now.
			return s.repo.GetByEmail(ctx, email)
		}
		return nil, perrors.NewErrInternalServerError("Failed to create user", err)
	}

	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to look up user", err)
	}
	if u == nil {
		return nil, perrors.NewErrNotFound("User not found", errors.New("unknown user id"))
	}
	return u, nil
}

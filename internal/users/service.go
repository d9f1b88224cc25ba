// Package users handles account lifecycle: registration, credential
// checks and profile updates. Session issuance lives in internal/auth.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/store"
)

// Service persists accounts over the entity store. Usernames and emails
// are stored lowercased and kept unique.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService constructs the user service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     string
	CoverImage string
}

// Register creates an account. Username and email collisions report
// Conflict; the unique store indexes close the race a pre-check leaves
// open.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	switch {
	case username == "":
		return models.User{}, fmt.Errorf("%w: username is required", errs.ErrInvalidInput)
	case email == "" || !strings.Contains(email, "@"):
		return models.User{}, fmt.Errorf("%w: a valid email is required", errs.ErrInvalidInput)
	case fullName == "":
		return models.User{}, fmt.Errorf("%w: full name is required", errs.ErrInvalidInput)
	case len(in.Password) < 8:
		return models.User{}, fmt.Errorf("%w: password must be at least 8 characters", errs.ErrInvalidInput)
	}

	if _, err := s.FindByUsername(ctx, username); err == nil {
		return models.User{}, fmt.Errorf("%w: username %q is taken", errs.ErrConflict, username)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return models.User{}, err
	}
	if _, err := s.FindByEmail(ctx, email); err == nil {
		return models.User{}, fmt.Errorf("%w: email %q is already registered", errs.ErrConflict, email)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := models.User{
		ID:           store.NewID(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       strings.TrimSpace(in.Avatar),
		CoverImage:   strings.TrimSpace(in.CoverImage),
		Password:     string(hash),
		WatchHistory: []store.ID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, models.Users, models.UserDoc(user)); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return models.User{}, fmt.Errorf("%w: username or email already registered", errs.ErrConflict)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	user.Password = ""
	return user, nil
}

// Authenticate checks a login against the stored password hash. A wrong
// identity and a wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, identity, password string) (models.User, error) {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if identity == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: credentials are required", errs.ErrInvalidInput)
	}

	doc, err := s.store.FindOne(ctx, models.Users, store.Match{
		Or: []store.Match{
			{Eq: map[string]any{"username": identity}},
			{Eq: map[string]any{"email": identity}},
		},
	})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: unknown or mismatched credentials", errs.ErrUnauthorized)
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	user := models.UserFromDoc(doc)
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return models.User{}, fmt.Errorf("%w: unknown or mismatched credentials", errs.ErrUnauthorized)
	}
	user.Password = ""
	return user, nil
}

// Get fetches a user by id, with the password hash stripped.
func (s *Service) Get(ctx context.Context, id store.ID) (models.User, error) {
	doc, err := s.store.FindByID(ctx, models.Users, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	user := models.UserFromDoc(doc)
	user.Password = ""
	return user, nil
}

// FindByUsername fetches a user by lowercased username.
func (s *Service) FindByUsername(ctx context.Context, username string) (models.User, error) {
	doc, err := s.store.FindOne(ctx, models.Users, store.Match{
		Eq: map[string]any{"username": strings.ToLower(username)},
	})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return models.UserFromDoc(doc), nil
}

// FindByEmail fetches a user by lowercased email.
func (s *Service) FindByEmail(ctx context.Context, email string) (models.User, error) {
	doc, err := s.store.FindOne(ctx, models.Users, store.Match{
		Eq: map[string]any{"email": strings.ToLower(email)},
	})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return models.UserFromDoc(doc), nil
}

// UpdateAccountInput carries the mutable profile fields; nil means
// unchanged.
type UpdateAccountInput struct {
	FullName   *string
	Email      *string
	Avatar     *string
	CoverImage *string
}

// UpdateAccount edits profile details for the given user.
func (s *Service) UpdateAccount(ctx context.Context, id store.ID, in UpdateAccountInput) (models.User, error) {
	set := store.Doc{}
	if in.FullName != nil {
		fullName := strings.TrimSpace(*in.FullName)
		if fullName == "" {
			return models.User{}, fmt.Errorf("%w: full name is required", errs.ErrInvalidInput)
		}
		set["fullName"] = fullName
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return models.User{}, fmt.Errorf("%w: a valid email is required", errs.ErrInvalidInput)
		}
		if existing, err := s.FindByEmail(ctx, email); err == nil && existing.ID != id {
			return models.User{}, fmt.Errorf("%w: email %q is already registered", errs.ErrConflict, email)
		} else if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return models.User{}, err
		}
		set["email"] = email
	}
	if in.Avatar != nil {
		set["avatar"] = strings.TrimSpace(*in.Avatar)
	}
	if in.CoverImage != nil {
		set["coverImage"] = strings.TrimSpace(*in.CoverImage)
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}
	set["updatedAt"] = s.now()

	if err := s.store.UpdateOne(ctx, models.Users, store.MatchID(id), store.Update{Set: set}); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return s.Get(ctx, id)
}

// ChangePassword replaces the stored hash after verifying the current
// password.
func (s *Service) ChangePassword(ctx context.Context, id store.ID, current, next string) error {
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", errs.ErrInvalidInput)
	}

	doc, err := s.store.FindByID(ctx, models.Users, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(store.AsString(doc, "password")), []byte(current)) != nil {
		return fmt.Errorf("%w: current password does not match", errs.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateOne(ctx, models.Users, store.MatchID(id), store.Update{
		Set: store.Doc{"password": string(hash), "updatedAt": s.now()},
	}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

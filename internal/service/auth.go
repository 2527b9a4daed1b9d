package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/db"
	"github.com/todoboard/todoboard-back/internal/session"
)

func (s *Service) Register(username, email, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	count := int64(0)
	if res := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count); res.Error != nil {
		return nil, errInternal(res.Error, "check username")
	}
	if count > 0 {
		return nil, errConflict("username already exists")
	}
	if res := s.db.Model(&db.User{}).Where("email = ?", email).Count(&count); res.Error != nil {
		return nil, errInternal(res.Error, "check email")
	}
	if count > 0 {
		return nil, errConflict("email already exists")
	}

	hash, err := s.bcryptGen(password)
	if err != nil {
		return nil, errInternal(err, "hash password")
	}

	user := db.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if res := s.db.Create(&user); res.Error != nil {
		return nil, errInternal(res.Error, "create user")
	}

	return &user, nil
}

// Login authenticates by username or email and opens a session.
func (s *Service) Login(ctx context.Context, identifier, password string) (string, *db.User, error) {
	user := db.User{}
	res := s.db.Where("username = ?", identifier).First(&user)
	if res.Error != nil {
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return "", nil, errInternal(res.Error, "find user by username")
		}
		res = s.db.Where("email = ?", strings.ToLower(identifier)).First(&user)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return "", nil, errAuth("invalid credentials")
			}
			return "", nil, errInternal(res.Error, "find user by email")
		}
	}

	if err := s.bcryptCheck(user.Password, password); err != nil {
		return "", nil, errAuth("invalid credentials")
	}

	token := session.NewToken()
	if err := s.sessions.Set(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", nil, errInternal(err, "store session")
	}

	return token, &user, nil
}

// StartSession opens a session for an already-authenticated user, e.g. right
// after registration.
func (s *Service) StartSession(ctx context.Context, userID uint64) (string, error) {
	token := session.NewToken()
	if err := s.sessions.Set(ctx, token, userID, s.sessionTTL); err != nil {
		return "", errInternal(err, "store session")
	}
	return token, nil
}

// Resolve maps a session token to its user and slides the session expiry.
func (s *Service) Resolve(ctx context.Context, token string) (*db.User, error) {
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, errAuth("no session")
		}
		return nil, errInternal(err, "get session")
	}

	user := db.User{}
	if res := s.db.First(&user, userID); res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errAuth("no session")
		}
		return nil, errInternal(res.Error, "find session user")
	}

	if err := s.sessions.Refresh(ctx, token, s.sessionTTL); err != nil && !errors.Is(err, session.ErrNoSession) {
		s.logger.Warnw("refresh session", "error", err)
	}

	return &user, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return errInternal(err, "delete session")
	}
	return nil
}

func (s *Service) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), 14)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *Service) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/healthconnect/portal/internal/models"
	jwtpkg "github.com/healthconnect/portal/internal/pkg/jwt"
	"github.com/healthconnect/portal/internal/pkg/session"
	"gorm.io/gorm"
)

var (
	errUnknownRole  = errors.New("unknown role")
	errNoUserInRole = errors.New("no user holds this role")
)

// Users is the part of the record store login needs.
type Users interface {
	FindUser(ctx context.Context, id string) (*models.UserModel, error)
	FirstUserByRole(ctx context.Context, role models.Role) (*models.UserModel, error)
}

type Service struct {
	users    Users
	sessions session.Store
	ttl      time.Duration
}

func NewService(users Users, sessions session.Store) *Service {
	return &Service{users: users, sessions: sessions, ttl: session.DefaultTTL}
}

// Login signs in as the first account holding the requested role.
func (s *Service) Login(ctx context.Context, rawRole string) (string, *models.UserModel, error) {
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return "", nil, errUnknownRole
	}
	user, err := s.users.FirstUserByRole(ctx, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errNoUserInRole
		}
		return "", nil, err
	}
	sid, err := s.sessions.Issue(ctx, user.ID, s.ttl)
	if err != nil {
		return "", nil, err
	}
	token, err := jwtpkg.Sign(user.ID, string(user.Role), sid, s.ttl)
	if err != nil {
		_ = s.sessions.Revoke(ctx, user.ID, sid)
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*models.UserModel, error) {
	return s.users.FindUser(ctx, userID)
}

func (s *Service) Logout(ctx context.Context, userID, sessionID string) error {
	err := s.sessions.Revoke(ctx, userID, sessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil
	}
	return err
}

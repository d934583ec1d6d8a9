package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kanban-board.com/kanban-board/internal/auth"
	apperrors "kanban-board.com/kanban-board/internal/errors"
	"kanban-board.com/kanban-board/internal/keystore"
	model "kanban-board.com/kanban-board/internal/models"
	repository "kanban-board.com/kanban-board/internal/repositories"
)

type AuthService struct {
	users    *repository.UserRepository
	tokens   *auth.TokenIssuer
	denylist keystore.Denylist
	cache    *expirable.LRU[string, Identity]
}

func NewAuthService(
	users *repository.UserRepository,
	tokens *auth.TokenIssuer,
	denylist keystore.Denylist,
	cacheSize int,
	cacheTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		denylist: denylist,
		cache:    expirable.NewLRU[string, Identity](cacheSize, nil, cacheTTL),
	}
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  *model.User
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, apperrors.ErrUsernameTaken
	}

	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent registration won the race between check and insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.takenError(ctx, username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Infof("user %s registered", username)
	return user, nil
}

// takenError tells which unique field a lost insert race collided on.
func (s *AuthService) takenError(ctx context.Context, username string) error {
	if taken, err := s.users.ExistsByUsername(ctx, username); err == nil && !taken {
		return apperrors.ErrEmailTaken
	}
	return apperrors.ErrUsernameTaken
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, apperrors.ErrInvalidCredentials, "find user %s", username)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to the caller it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.parse(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if identity, ok := s.cache.Get(claims.Subject); ok {
		return identity, nil
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return Identity{}, notFound(err, apperrors.ErrUnauthorized, "find user %s", claims.Subject)
	}
	if !user.IsActive {
		return Identity{}, apperrors.ErrUnauthorized
	}

	identity := Identity{UserID: user.ID, Username: user.Username}
	s.cache.Add(claims.Subject, identity)
	return identity, nil
}

// Logout revokes token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(ctx, token)
	if err != nil {
		return err
	}

	if err := s.denylist.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.cache.Remove(claims.Subject)
	return nil
}

func (s *AuthService) parse(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrUnauthorized
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	return claims, nil
}

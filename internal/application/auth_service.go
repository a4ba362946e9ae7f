package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	repo "github.com/oksasatya/todo-calendar-api/internal/domain/repository"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
)

const minPasswordLength = 6

type AuthService struct {
	Store       Store
	Tokens      *helpers.TokenManager
	Revocations repo.RevocationStore
	BcryptCost  int
	Logger      *logrus.Logger
	now         func() time.Time
}

func NewAuthService(store Store, tokens *helpers.TokenManager, revocations repo.RevocationStore, bcryptCost int, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Store:       store,
		Tokens:      tokens,
		Revocations: revocations,
		BcryptCost:  bcryptCost,
		Logger:      logger,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  entity.UserView `json:"user"`
	Token string          `json:"token"`
}

// Register creates the user together with the default categories in one
// transaction and signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "auth.register"
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, apperror.Validation(op, "Email, password, and name are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperror.Validation(op, "Password must be at least %d characters", minPasswordLength)
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		CreatedAt:    s.now().UTC(),
	}
	err = s.Store.InTx(ctx, func(r repo.Registry) error {
		if err := r.Users.Create(ctx, u); err != nil {
			return err
		}
		return r.Categories.CreateMany(ctx, entity.DefaultCategories(u.ID))
	})
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	res, err := s.issue(op, u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "auth.login"
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Validation(op, "Email and password are required")
	}
	u, err := s.Store.Registry().Users.GetByEmail(ctx, email)
	if apperror.KindOf(err) == apperror.KindNotFound {
		return nil, apperror.Unauthenticated(op, "Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperror.Unauthenticated(op, "Invalid email or password")
	}

	res, err := s.issue(op, u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user logged in")
	return res, nil
}

func (s *AuthService) issue(op string, u *entity.User) (*AuthResult, error) {
	tok, err := s.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	return &AuthResult{User: u.View(), Token: tok.Token}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*entity.UserView, error) {
	return s.Store.Registry().Users.GetByID(ctx, userID)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, userID, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return apperror.Unauthenticated("auth.logout", "Invalid or expired token")
	}
	if err := s.Revocations.Revoke(ctx, tokenID, userID, expiresAt); err != nil {
		return err
	}
	s.Logger.WithField("user_id", userID).Info("user logged out")
	return nil
}

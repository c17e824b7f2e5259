package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/auth-microservice/internal/domain/entity"
	repo "github.com/oksasatya/auth-microservice/internal/domain/repository"
	"github.com/oksasatya/auth-microservice/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrInvalidCode        = errors.New("invalid verification code")
)

// Service is the account registry: it owns user records, identity
// invariants and the unverified -> verified transition.
type Service struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Notifier Notifier
	Redis    *redis.Client
	Logger   *logrus.Logger
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, notifier Notifier, rdb *redis.Client, logger *logrus.Logger) *Service {
	return &Service{Repo: r, JWT: jwt, Notifier: notifier, Redis: rdb, Logger: logger}
}

func keyVerified(uid string) string { return "user:verified:" + uid }
func keyLastLogin(uid string) string { return "user:last_login:" + uid }

type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
}

// Register creates an unverified account and dispatches the verification
// code. The duplicate pre-checks are a fast path only; the unique
// constraints in storage are authoritative and surface through Repo.Create.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if existing, err := s.Repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, repo.ErrDuplicateEmail
	}
	if existing, err := s.Repo.GetByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, repo.ErrDuplicateUsername
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := helpers.GenVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	u := &entity.User{
		Username:         in.Username,
		Name:             in.Name,
		Email:            in.Email,
		PasswordHash:     hash,
		Role:             entity.RoleForUsername(in.Username),
		IsVerified:       false,
		VerificationCode: code,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.dispatchVerificationCode(u)
	return u, nil
}

// dispatchVerificationCode hands the code to the notifier on a detached
// goroutine. Failures never reach the caller; the code is logged at WARN so
// operators can relay it when delivery is down.
func (s *Service) dispatchVerificationCode(u *entity.User) {
	email, name, code := u.Email, u.Name, u.VerificationCode
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if s.Notifier == nil {
			s.warnUndelivered(email, code, errors.New("no notifier configured"))
			return
		}
		if err := s.Notifier.SendVerificationCode(ctx, email, name, code); err != nil {
			s.warnUndelivered(email, code, err)
		}
	}()
}

func (s *Service) warnUndelivered(email, code string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(logrus.Fields{
		"email": email,
		"code":  code,
	}).Warn("verification email not delivered; code available here as fallback")
}

// Verify matches the submitted code against the stored one and flips the
// account to verified exactly once. A second call fails with ErrInvalidCode
// because the stored code is cleared on success.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if u.VerificationCode == "" || u.VerificationCode != code {
		return ErrInvalidCode
	}
	if err := s.Repo.MarkVerified(ctx, u.ID); err != nil {
		return err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, keyVerified(u.ID), "1", 0).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verified-flag cache write failed")
		}
	}
	return nil
}

// GetByEmail returns the user or ErrUserNotFound.
func (s *Service) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// TokenResult is the issued bearer credential.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Login authenticates the credentials and mints a bearer token. An absent
// user and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, TokenResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, TokenResult{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenResult{}, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return nil, TokenResult{}, ErrAccountNotVerified
	}

	access, exp, err := s.JWT.GenerateAccessToken(u.Email, string(u.Role), u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, TokenResult{}, err
	}

	if s.Redis != nil {
		record := map[string]any{
			"email":         u.Email,
			"last_login_at": time.Now().UTC().Format(time.RFC3339Nano),
		}
		if err := helpers.RedisSetJSON(ctx, s.Redis, keyLastLogin(u.ID), record, 30*24*time.Hour); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("last-login cache write failed")
		}
	}

	return u, TokenResult{AccessToken: access, TokenType: "bearer", ExpiresAt: exp}, nil
}

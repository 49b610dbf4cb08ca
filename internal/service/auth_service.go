package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/feastflow/feastflow-api/internal/domain"
	"github.com/feastflow/feastflow-api/internal/repository/ports"
	"github.com/feastflow/feastflow-api/internal/util"
)

// PasswordResetSender delivers a reset link out of band. Implementations
// may fail without affecting the reset flow's response.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

type AuthService struct {
	users    ports.UserRepository
	tokens   *util.JWTManager
	mailer   PasswordResetSender
	resetTTL time.Duration
}

// NewAuthService wires the auth flows. mailer may be nil when SMTP is not
// configured; the reset token is then only returned in the response.
func NewAuthService(users ports.UserRepository, tokens *util.JWTManager, mailer PasswordResetSender, resetTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer, resetTTL: resetTTL}
}

// AuthResult is what register and login hand back: a signed bearer token
// and the account it identifies.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// PasswordResetIssue carries a freshly minted reset credential.
type PasswordResetIssue struct {
	Token     string
	ResetURL  string
	ExpiresAt time.Time
}

func (s *AuthService) RegisterWithEmail(ctx context.Context, name, email, password, role string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if role == "" {
		role = domain.RoleCustomer
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, fmt.Errorf("derive password: %w", err)
	}

	user, err := s.users.Create(ctx, name, email, hash, salt, role)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// LoginWithEmail returns the same ErrInvalidCredentials whether the email
// is unknown or the password is wrong, so callers cannot probe for accounts.
func (s *AuthService) LoginWithEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// Authenticate verifies a bearer token and hydrates the account it names.
// A bad token yields ErrUnauthorized; a valid token whose account has since
// disappeared yields ErrAccountNotFound.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return s.users.FindByID(ctx, id)
}

// RequestPasswordReset issues a single-use reset token. It returns
// (nil, nil) for unknown emails so the handler's acknowledgment stays
// identical either way. A newer request supersedes any pending token.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, baseURL string) (*PasswordResetIssue, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}

	resetURL := fmt.Sprintf("%s/api/auth/reset-password/%s", strings.TrimRight(baseURL, "/"), token)
	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
			log.Printf("password reset mail to %s failed: %v", user.Email, err)
		}
	}

	return &PasswordResetIssue{Token: token, ResetURL: resetURL, ExpiresAt: expiresAt}, nil
}

// CompletePasswordReset consumes a reset token and rotates the password
// hash. The token is valid strictly before its expiry instant and exactly
// once.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}
	if user.ResetExpires == nil || !user.ResetExpires.After(time.Now()) {
		return domain.ErrResetTokenInvalid
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return fmt.Errorf("derive password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return err
	}
	return s.users.ClearResetToken(ctx, user.ID)
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

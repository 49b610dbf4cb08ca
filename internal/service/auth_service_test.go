package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/feastflow/feastflow-api/internal/domain"
	"github.com/feastflow/feastflow-api/internal/util"
)

// memUserRepo is an in-memory credential store used across the service
// tests. Error fields, when set, are returned instead of touching state.
type memUserRepo struct {
	nextID int64
	byID   map[int64]*domain.User

	createErr error
	findErr   error
	setErr    error
	updateErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[int64]*domain.User{}}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (m *memUserRepo) Create(ctx context.Context, name, email string, passwordHash, passwordSalt []byte, role string) (*domain.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	m.nextID++
	user := &domain.User{
		ID:           m.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.byID[user.ID] = user
	return cloneUser(user), nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memUserRepo) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.ResetToken != nil && *u.ResetToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memUserRepo) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	if m.setErr != nil {
		return m.setErr
	}
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	u.ResetToken = &token
	u.ResetExpires = &expiresAt
	return nil
}

func (m *memUserRepo) ClearResetToken(ctx context.Context, id int64) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	u.ResetToken = nil
	u.ResetExpires = nil
	return nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash, passwordSalt []byte) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	u.PasswordHash = append([]byte(nil), passwordHash...)
	u.PasswordSalt = append([]byte(nil), passwordSalt...)
	return nil
}

func (m *memUserRepo) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = update.Bio
	}
	if update.Avatar != nil {
		u.Avatar = update.Avatar
	}
	if update.Specialties != nil {
		u.Specialties = *update.Specialties
	}
	return cloneUser(u), nil
}

func (m *memUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users := make([]domain.User, 0, len(m.byID))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.byID[id]; ok {
			users = append(users, *cloneUser(u))
		}
	}
	if offset > len(users) {
		offset = len(users)
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

type recordingMailer struct {
	sent []struct {
		email    string
		resetURL string
	}
	err error
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	m.sent = append(m.sent, struct {
		email    string
		resetURL string
	}{email: email, resetURL: resetURL})
	return m.err
}

func newAuthServiceForTests(users *memUserRepo, mailer PasswordResetSender) *AuthService {
	tokens := util.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, tokens, mailer, 15*time.Minute)
}

func TestRegisterWithEmailSuccess(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newAuthServiceForTests(users, nil)

	result, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.User == nil || result.User.Email != "jane@example.com" {
		t.Fatalf("unexpected user in result: %+v", result.User)
	}
	if result.User.Role != domain.RoleCustomer {
		t.Fatalf("expected default role customer, got %q", result.User.Role)
	}
	if result.Token == "" {
		t.Fatalf("expected a signed token")
	}
	if len(users.byID) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(users.byID))
	}

	stored := users.byID[result.User.ID]
	if bytes.Equal(stored.PasswordHash, []byte("secret1")) {
		t.Fatalf("raw password stored as credential")
	}
	if !util.VerifyPassword("secret1", stored.PasswordSalt, stored.PasswordHash) {
		t.Fatalf("stored credential does not verify against raw password")
	}
}

func TestRegisterWithEmailKeepsExplicitRole(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTests(newMemUserRepo(), nil)

	result, err := svc.RegisterWithEmail(ctx, "Carla", "carla@example.com", "secret1", domain.RoleCaterer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.User.Role != domain.RoleCaterer {
		t.Fatalf("expected caterer role, got %q", result.User.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTests(newMemUserRepo(), nil)

	if _, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", ""); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	_, err := svc.RegisterWithEmail(ctx, "Other Name", "jane@example.com", "different2", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWithEmailSuccess(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newAuthServiceForTests(users, nil)

	if _, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	result, err := svc.LoginWithEmail(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}

	authed, err := svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("expected issued token to authenticate, got %v", err)
	}
	if authed.ID != result.User.ID || authed.Email != "jane@example.com" {
		t.Fatalf("authenticated principal mismatch: %+v", authed)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTests(newMemUserRepo(), nil)

	if _, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, wrongPassErr := svc.LoginWithEmail(ctx, "jane@example.com", "not-the-password")
	_, unknownErr := svc.LoginWithEmail(ctx, "nobody@example.com", "secret1")

	if !errors.Is(wrongPassErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassErr)
	}
	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
	}
	if wrongPassErr.Error() != unknownErr.Error() {
		t.Fatalf("login failure messages differ: %q vs %q", wrongPassErr, unknownErr)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTests(newMemUserRepo(), nil)

	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	foreign := util.NewJWTManager("other-secret", time.Hour)
	token, _, err := foreign.Generate(1, "jane@example.com", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("generate foreign token: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign signature, got %v", err)
	}
}

func TestAuthenticateVanishedAccount(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newAuthServiceForTests(users, nil)

	result, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	delete(users.byID, result.User.ID)

	if _, err := svc.Authenticate(ctx, result.Token); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	ctx := context.Background()
	mailer := &recordingMailer{}
	svc := newAuthServiceForTests(newMemUserRepo(), mailer)

	issue, err := svc.RequestPasswordReset(ctx, "ghost@example.com", "https://api.feastflow.example")
	if err != nil {
		t.Fatalf("expected no error for unknown email, got %v", err)
	}
	if issue != nil {
		t.Fatalf("expected no issue for unknown email, got %+v", issue)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail for unknown email")
	}
}

func TestPasswordResetLifecycle(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	mailer := &recordingMailer{}
	svc := newAuthServiceForTests(users, mailer)

	if _, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	issue, err := svc.RequestPasswordReset(ctx, "jane@example.com", "https://api.feastflow.example")
	if err != nil {
		t.Fatalf("reset request failed: %v", err)
	}
	if issue == nil || issue.Token == "" {
		t.Fatalf("expected a reset token")
	}
	if !strings.HasSuffix(issue.ResetURL, issue.Token) {
		t.Fatalf("reset URL %q does not carry the token", issue.ResetURL)
	}
	if until := time.Until(issue.ExpiresAt); until < 14*time.Minute || until > 16*time.Minute {
		t.Fatalf("expected roughly 15 minute expiry, got %v", until)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].email != "jane@example.com" {
		t.Fatalf("expected one reset mail, got %+v", mailer.sent)
	}

	if err := svc.CompletePasswordReset(ctx, issue.Token, "brand-new-pw"); err != nil {
		t.Fatalf("reset completion failed: %v", err)
	}

	if _, err := svc.LoginWithEmail(ctx, "jane@example.com", "brand-new-pw"); err != nil {
		t.Fatalf("expected login with new password to succeed, got %v", err)
	}
	if _, err := svc.LoginWithEmail(ctx, "jane@example.com", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected old password to be rejected, got %v", err)
	}

	// Token is single use.
	if err := svc.CompletePasswordReset(ctx, issue.Token, "another-pw"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid on reuse, got %v", err)
	}
}

func TestPasswordResetExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newAuthServiceForTests(users, nil)

	result, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	// One second before expiry: accepted.
	if err := users.SetResetToken(ctx, result.User.ID, "token-alive", time.Now().Add(time.Second)); err != nil {
		t.Fatalf("seed reset token: %v", err)
	}
	if err := svc.CompletePasswordReset(ctx, "token-alive", "fresh-pw1"); err != nil {
		t.Fatalf("expected completion just before expiry to succeed, got %v", err)
	}

	// One second after expiry: rejected.
	if err := users.SetResetToken(ctx, result.User.ID, "token-stale", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("seed reset token: %v", err)
	}
	if err := svc.CompletePasswordReset(ctx, "token-stale", "fresh-pw2"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid after expiry, got %v", err)
	}
}

func TestRequestPasswordResetSupersedesPrevious(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTests(newMemUserRepo(), nil)

	if _, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	first, err := svc.RequestPasswordReset(ctx, "jane@example.com", "https://api.feastflow.example")
	if err != nil {
		t.Fatalf("first reset request failed: %v", err)
	}
	second, err := svc.RequestPasswordReset(ctx, "jane@example.com", "https://api.feastflow.example")
	if err != nil {
		t.Fatalf("second reset request failed: %v", err)
	}

	if err := svc.CompletePasswordReset(ctx, first.Token, "new-pw-1"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected superseded token to be rejected, got %v", err)
	}
	if err := svc.CompletePasswordReset(ctx, second.Token, "new-pw-2"); err != nil {
		t.Fatalf("expected latest token to work, got %v", err)
	}
}

func TestRequestPasswordResetMailFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc := newAuthServiceForTests(newMemUserRepo(), mailer)

	if _, err := svc.RegisterWithEmail(ctx, "Jane Doe", "jane@example.com", "secret1", ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	issue, err := svc.RequestPasswordReset(ctx, "jane@example.com", "https://api.feastflow.example")
	if err != nil {
		t.Fatalf("expected reset request to survive mail failure, got %v", err)
	}
	if issue == nil || issue.Token == "" {
		t.Fatalf("expected a reset token despite mail failure")
	}
}

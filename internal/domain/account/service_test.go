package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitaltrack/vitaltrack/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	accounts map[uuid.UUID]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{accounts: make(map[uuid.UUID]*Account)}
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return ErrEmailInUse
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.accounts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now()
	return nil
}

// captureNotifier records the last reset token it was asked to deliver.
type captureNotifier struct {
	email string
	token string
}

func (n *captureNotifier) SendReset(_ context.Context, email, token string) error {
	n.email = email
	n.token = token
	return nil
}

func newTestService() (*Service, *mockRepo, *captureNotifier) {
	repo := newMockRepo()
	notifier := &captureNotifier{}
	tokens := auth.NewManager([]byte("test-secret-0123456789abcdef0123"), "test", time.Hour)
	svc := NewService(repo, tokens, notifier, zerolog.Nop())
	return svc, repo, notifier
}

// -- Tests --

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Register(context.Background(), "  User@Example.COM ", "hunter2hunter2", "Sam")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.Email != "user@example.com" {
		t.Errorf("email should be normalized, got %q", p.Email)
	}
	if p.DisplayName != "Sam" {
		t.Errorf("display name = %q, want Sam", p.DisplayName)
	}
	if p.ID == uuid.Nil {
		t.Error("profile should carry the assigned id")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"no at sign", "userexample.com", "hunter2hunter2", ErrInvalidEmail},
		{"no domain dot", "user@example", "hunter2hunter2", ErrInvalidEmail},
		{"empty local part", "@example.com", "hunter2hunter2", ErrInvalidEmail},
		{"short password", "user@example.com", "short", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.email, tt.password, ""); !errors.Is(err, tt.want) {
				t.Errorf("Register(%q, %q) = %v, want %v", tt.email, tt.password, err, tt.want)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "USER@example.com", "hunter2hunter2", ""); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestSignIn(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", "Sam"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, profile, err := svc.SignIn(context.Background(), "user@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if profile == nil || profile.Email != "user@example.com" {
		t.Error("expected the profile back")
	}

	claims, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
	if claims.Subject != profile.ID.String() {
		t.Error("token subject should be the account id")
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "user@example.com", "wrong-password"); !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("expected ErrWrongCredentials, got %v", err)
	}
}

func TestSignIn_UnknownEmailSameError(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.SignIn(context.Background(), "nobody@example.com", "whatever123")
	if !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("unknown email must look like wrong credentials, got %v", err)
	}
}

func TestSignIn_RateLimited(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for i := 0; i < maxSignInTries; i++ {
		if _, _, err := svc.SignIn(context.Background(), "user@example.com", "wrong"); !errors.Is(err, ErrWrongCredentials) {
			t.Fatalf("attempt %d: expected ErrWrongCredentials, got %v", i, err)
		}
	}
	// Even the right password is refused inside the window.
	if _, _, err := svc.SignIn(context.Background(), "user@example.com", "hunter2hunter2"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// The window expiring clears the limit.
	svc.now = func() time.Time { return time.Now().Add(signInWindowSecs*time.Second + time.Minute) }
	if _, _, err := svc.SignIn(context.Background(), "user@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("expected sign-in after window, got %v", err)
	}
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, _, err := svc.SignIn(context.Background(), "user@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	claims, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	svc.SignOut(claims)

	if _, err := svc.tokens.Verify(token); !errors.Is(err, auth.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after sign-out, got %v", err)
	}
}

func TestPasswordReset_FullFlow(t *testing.T) {
	svc, _, notifier := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.SendPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("SendPasswordReset failed: %v", err)
	}
	if notifier.token == "" {
		t.Fatal("notifier should have received a token")
	}

	if err := svc.ResetPassword(context.Background(), notifier.token, "new-password-123"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if _, _, err := svc.SignIn(context.Background(), "user@example.com", "hunter2hunter2"); !errors.Is(err, ErrWrongCredentials) {
		t.Error("old password should no longer work")
	}
	if _, _, err := svc.SignIn(context.Background(), "user@example.com", "new-password-123"); err != nil {
		t.Errorf("new password should work, got %v", err)
	}
}

func TestPasswordReset_TokenSingleUse(t *testing.T) {
	svc, _, notifier := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.SendPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("SendPasswordReset failed: %v", err)
	}
	if err := svc.ResetPassword(context.Background(), notifier.token, "new-password-123"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if err := svc.ResetPassword(context.Background(), notifier.token, "another-password"); !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("reused token should be rejected, got %v", err)
	}
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	svc, _, notifier := newTestService()

	if _, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.SendPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("SendPasswordReset failed: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := svc.ResetPassword(context.Background(), notifier.token, "new-password-123"); !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("expired token should be rejected, got %v", err)
	}
}

func TestSendPasswordReset_UnknownEmailSilent(t *testing.T) {
	svc, _, notifier := newTestService()

	if err := svc.SendPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email must not error, got %v", err)
	}
	if notifier.token != "" {
		t.Error("no token should be issued for unknown emails")
	}
}

func TestGetProfile(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Register(context.Background(), "user@example.com", "hunter2hunter2", "Sam")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := svc.GetProfile(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got.Email != "user@example.com" || got.DisplayName != "Sam" {
		t.Error("profile fields should round-trip")
	}

	if _, err := svc.GetProfile(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	if msg := UserMessage(ErrWeakPassword); msg != "Password must be at least 8 characters long." {
		t.Errorf("unexpected message: %q", msg)
	}
	if msg := UserMessage(errors.New("boom")); msg != "Something went wrong. Please try again." {
		t.Errorf("unknown errors should fall back, got %q", msg)
	}
}

package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitaltrack/vitaltrack/internal/platform/auth"
)

const (
	minPasswordLen   = 8
	maxSignInTries   = 5
	signInWindowSecs = 300
)

// ResetNotifier delivers password-reset tokens to the user, typically by
// email. The in-process default just logs them.
type ResetNotifier interface {
	SendReset(ctx context.Context, email, token string) error
}

// LogNotifier logs reset tokens instead of delivering them. Used in
// development and tests.
type LogNotifier struct{ Logger zerolog.Logger }

func (n LogNotifier) SendReset(_ context.Context, email, token string) error {
	n.Logger.Info().Str("email", email).Str("token", token).Msg("password reset requested")
	return nil
}

type signInAttempts struct {
	count       int
	windowStart time.Time
}

type Service struct {
	repo     Repository
	tokens   *auth.Manager
	notifier ResetNotifier
	logger   zerolog.Logger

	mu       sync.Mutex
	attempts map[string]*signInAttempts     // email -> failed sign-ins
	resets   map[string]resetToken          // token -> pending reset
	now      func() time.Time
}

type resetToken struct {
	accountID uuid.UUID
	expires   time.Time
}

func NewService(repo Repository, tokens *auth.Manager, notifier ResetNotifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		attempts: make(map[string]*signInAttempts),
		resets:   make(map[string]resetToken),
		now:      time.Now,
	}
}

// Register creates an account and returns its profile.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Profile, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrUnavailable
	}
	a := &Account{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	p := a.Profile()
	return &p, nil
}

// SignIn verifies credentials and issues an access token. Repeated failures
// for the same email within a five-minute window are rate limited.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *Profile, error) {
	email = normalizeEmail(email)
	if s.rateLimited(email) {
		return "", nil, ErrRateLimited
	}

	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			s.recordFailure(email)
			// Same message as a bad password so sign-in does not reveal
			// which emails are registered.
			return "", nil, ErrWrongCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		s.recordFailure(email)
		return "", nil, ErrWrongCredentials
	}
	s.clearFailures(email)

	token, err := s.tokens.Issue(a.ID, a.DisplayName)
	if err != nil {
		return "", nil, ErrUnavailable
	}
	p := a.Profile()
	return token, &p, nil
}

// SignOut revokes the presented token.
func (s *Service) SignOut(claims *auth.Claims) {
	s.tokens.Revoke(claims)
}

// SendPasswordReset generates a reset token and hands it to the notifier.
// An unknown email still returns nil so the endpoint does not leak which
// addresses are registered.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ErrUnavailable
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.resets[token] = resetToken{accountID: a.ID, expires: s.now().Add(time.Hour)}
	s.mu.Unlock()

	return s.notifier.SendReset(ctx, email, token)
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	s.mu.Lock()
	pending, ok := s.resets[token]
	if ok {
		delete(s.resets, token)
	}
	s.mu.Unlock()
	if !ok || s.now().After(pending.expires) {
		return ErrWrongCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrUnavailable
	}
	return s.repo.UpdatePassword(ctx, pending.accountID, string(hash))
}

// GetProfile returns the public view of an account.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := a.Profile()
	return &p, nil
}

func (s *Service) rateLimited(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	att, ok := s.attempts[email]
	if !ok {
		return false
	}
	if s.now().Sub(att.windowStart) > signInWindowSecs*time.Second {
		delete(s.attempts, email)
		return false
	}
	return att.count >= maxSignInTries
}

func (s *Service) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	att, ok := s.attempts[email]
	if !ok || s.now().Sub(att.windowStart) > signInWindowSecs*time.Second {
		s.attempts[email] = &signInAttempts{count: 1, windowStart: s.now()}
		return
	}
	att.count++
}

func (s *Service) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail applies the same lightweight shape check a signup form would:
// one @, something on both sides, a dot in the domain.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/portfolio-go/apperror"
)

const msgInvalidCredentials = "invalid email or password"

// bcrypt rejects passwords longer than 72 bytes.
const maxPasswordBytes = 72

// Service implements registration, login and role assignment.
type Service struct {
	store  IdentityStore
	tokens *TokenService
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store IdentityStore, tokens *TokenService, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

// Register creates a standard identity and returns a token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if len(req.Password) > maxPasswordBytes {
		return nil, apperror.NewValidationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes), nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	identity := &Identity{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hashed),
		Role:         RoleStandard,
	}

	if err := s.store.Create(ctx, identity); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, apperror.NewBadRequestError("a user with this email already exists", err)
		case errors.Is(err, ErrDuplicateUsername):
			return nil, apperror.NewBadRequestError("a user with this username already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "identity_id", identity.ID)
	return s.respond(*identity)
}

// Login checks the credentials and returns a fresh token. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	identity, found, err := s.store.FindByEmail(ctx, normalizeEmail(req.Email), IncludeSecret)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	if !found {
		return nil, apperror.NewUnauthorizedError(msgInvalidCredentials, nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.NewUnauthorizedError(msgInvalidCredentials, nil)
	}

	return s.respond(identity)
}

// Promote grants the administrator role to the identity with the given email.
func (s *Service) Promote(ctx context.Context, email string) (Identity, error) {
	identity, found, err := s.store.FindByEmail(ctx, normalizeEmail(email), ExcludeSecret)
	if err != nil {
		return Identity{}, apperror.NewDatabaseError("failed to get user", err)
	}
	if !found {
		return Identity{}, apperror.NewNotFoundError(fmt.Sprintf("user with email '%s' not found", email), nil)
	}
	if identity.IsAdmin() {
		return identity, nil
	}

	if err := s.store.SetRole(ctx, identity.ID, RoleAdmin); err != nil {
		return Identity{}, apperror.NewDatabaseError("failed to update role", err)
	}
	identity.Role = RoleAdmin
	s.logger.InfoContext(ctx, "user promoted", "identity_id", identity.ID)
	return identity, nil
}

func (s *Service) respond(identity Identity) (*AuthResponse, error) {
	token, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}
	return &AuthResponse{Token: token, User: newUserView(identity)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

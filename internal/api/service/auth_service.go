package service

import (
	"context"
	"errors"
	"fmt"

	"yamdb/internal/api/dto"
	"yamdb/internal/api/models"
	"yamdb/internal/api/repository"
	"yamdb/internal/metrics"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CodeSender delivers a confirmation code in the background. Delivery errors
// are handled by the sender.
type CodeSender interface {
	SendConfirmationCode(ctx context.Context, email, username, code string) <-chan struct{}
}

// ResendThrottle decides whether a code may be mailed again for a username.
type ResendThrottle interface {
	Allow(ctx context.Context, username string) bool
}

// SignupRecorder counts signup outcomes.
type SignupRecorder interface {
	Signup(outcome string)
}

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error)
	ObtainToken(ctx context.Context, req dto.TokenRequest) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	codes    *ConfirmationCodes
	tokens   *TokenIssuer
	sender   CodeSender
	throttle ResendThrottle
	recorder SignupRecorder
	log      zerolog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes *ConfirmationCodes,
	tokens *TokenIssuer,
	sender CodeSender,
	throttle ResendThrottle,
	recorder SignupRecorder,
	log zerolog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		codes:    codes,
		tokens:   tokens,
		sender:   sender,
		throttle: throttle,
		recorder: recorder,
		log:      log,
	}
}

// Signup registers a new user or re-sends a code to an existing
// (username, email) pair.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	resp := &dto.SignupResponse{Username: req.Username, Email: req.Email}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	switch {
	case err == nil:
		if existing.Email != req.Email {
			s.record(metrics.SignupRejected)
			return nil, fieldError("email", "Email does not match the one registered for %s.", req.Username)
		}
		if s.throttle != nil && !s.throttle.Allow(ctx, existing.Username) {
			s.record(metrics.SignupThrottle)
			return resp, nil
		}
		if err := s.issueCode(ctx, existing); err != nil {
			return nil, err
		}
		s.record(metrics.SignupResent)
		return resp, nil

	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	// Check if email exists
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		s.record(metrics.SignupRejected)
		return nil, fieldError("email", "A user with email %s is already registered.", req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			s.record(metrics.SignupRejected)
			return nil, fieldError("username", "A user with that username or email already exists.")
		}
		return nil, err
	}
	if s.throttle != nil {
		// start the cooldown; the first code always goes out
		s.throttle.Allow(ctx, user.Username)
	}
	if err := s.issueCode(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	s.record(metrics.SignupCreated)
	return resp, nil
}

func (s *authService) issueCode(ctx context.Context, user *models.User) error {
	code, hash, err := s.codes.Generate(user)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetConfirmationCode(ctx, user.ID, hash); err != nil {
		return err
	}
	user.ConfirmationCode = hash
	s.sender.SendConfirmationCode(ctx, user.Email, user.Username, code)
	return nil
}

func (s *authService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.Signup(outcome)
	}
}

// ObtainToken exchanges a confirmation code for an access token.
func (s *authService) ObtainToken(ctx context.Context, req dto.TokenRequest) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return "", notFound(err)
	}

	if !s.codes.Verify(user, req.ConfirmationCode) {
		return "", fieldError("confirmation_code", "Invalid confirmation code.")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate validates the bearer token and loads its user fresh from
// storage, so role changes and deletions apply immediately.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shelfmark/shelfmark-go/internal/apperr"
	"github.com/shelfmark/shelfmark-go/internal/crypto"
	"github.com/shelfmark/shelfmark-go/internal/logging"
	"github.com/shelfmark/shelfmark-go/internal/metrics"
	"github.com/shelfmark/shelfmark-go/internal/model"
	"github.com/shelfmark/shelfmark-go/internal/repository"
)

const (
	MsgRegisterFieldsRequired = "userName, password, and password2 are all required."
	MsgPasswordsDoNotMatch    = "Passwords do not match."
	MsgPasswordTooLong        = "password must be at most 72 bytes."
	MsgUserNameTaken          = "User Name already taken."
	MsgRegistered             = "User registered successfully."
	MsgLoginFieldsRequired    = "userName and password are required."
	MsgInvalidCredentials     = "Incorrect user name or password."
	MsgLoginSuccessful        = "login successful"
	MsgUserNotFound           = "User not found."
)

// AuthService handles registration and login.
type AuthService struct {
	repo   repository.UserStore
	hasher *crypto.Hasher
	tokens *crypto.TokenIssuer
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo repository.UserStore, hasher *crypto.Hasher, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register creates a new user account with an empty favourites list.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.MessageResponse, error) {
	if req.UserName == "" || req.Password == "" || req.Password2 == "" {
		return model.MessageResponse{}, apperr.Validation(MsgRegisterFieldsRequired)
	}
	if req.Password != req.Password2 {
		return model.MessageResponse{}, apperr.Validation(MsgPasswordsDoNotMatch)
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return model.MessageResponse{}, apperr.Validation(MsgPasswordTooLong)
		}
		err = apperr.Persistence(err, "hash password")
		logging.Error(ctx, "registration failed", err)
		metrics.RecordRegistration(metrics.StatusError)
		return model.MessageResponse{}, err
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		PasswordHash: hash,
		Email:        req.Email,
		Favourites:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// No pre-check: the store's unique constraint decides between
	// concurrent registrations of the same name.
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUserName) {
			metrics.RecordRegistration(metrics.StatusConflict)
			return model.MessageResponse{}, apperr.Conflict(MsgUserNameTaken)
		}
		err = apperr.Persistence(err, "insert user", "user_name", req.UserName)
		logging.Error(ctx, "registration failed", err)
		metrics.RecordRegistration(metrics.StatusError)
		return model.MessageResponse{}, err
	}

	metrics.RecordRegistration(metrics.StatusSuccess)
	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return model.MessageResponse{Message: MsgRegistered}, nil
}

// Login verifies credentials and returns a signed bearer token. An unknown
// user name and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	if req.UserName == "" || req.Password == "" {
		return model.LoginResponse{}, apperr.Validation(MsgLoginFieldsRequired)
	}

	user, err := s.repo.GetByUserName(ctx, req.UserName)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			err = apperr.Persistence(err, "get user by name")
			logging.Error(ctx, "login lookup failed", err)
			metrics.RecordLogin(metrics.StatusError)
			return model.LoginResponse{}, err
		}
		// Unknown users still cost one bcrypt comparison.
		if err := s.hasher.VerifyDummy(ctx, req.Password); err != nil {
			return model.LoginResponse{}, apperr.Persistence(err, "verify password")
		}
		metrics.RecordLogin(metrics.StatusRejected)
		return model.LoginResponse{}, apperr.Auth(MsgInvalidCredentials)
	}

	match, err := s.hasher.Verify(ctx, req.Password, user.PasswordHash)
	if err != nil {
		err = apperr.Persistence(err, "verify password", "user_id", user.ID)
		logging.Error(ctx, "password verification failed", err)
		metrics.RecordLogin(metrics.StatusError)
		return model.LoginResponse{}, err
	}
	if !match {
		metrics.RecordLogin(metrics.StatusRejected)
		return model.LoginResponse{}, apperr.Auth(MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.UserName)
	if err != nil {
		return model.LoginResponse{}, apperr.Persistence(err, "issue token")
	}

	metrics.RecordLogin(metrics.StatusSuccess)
	return model.LoginResponse{
		Message: MsgLoginSuccessful,
		Token:   token,
	}, nil
}

// CurrentUser retrieves a user by ID and returns safe user data.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, apperr.NotFound(MsgUserNotFound)
		}
		return model.UserResponse{}, apperr.Persistence(err, "get user by id", "user_id", userID)
	}

	return model.UserResponse{
		ID:         user.ID,
		UserName:   user.UserName,
		Email:      user.Email,
		Favourites: user.Favourites,
		CreatedAt:  user.CreatedAt,
	}, nil
}

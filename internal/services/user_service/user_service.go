package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"galerie/internal/domain/models"
	"galerie/internal/lib/logger/sl"
	"galerie/internal/repository"
	"galerie/internal/storage"
	"galerie/internal/transport/http/dto"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	log  *slog.Logger
	repo repository.UserRepository
}

func NewUserService(log *slog.Logger, repo repository.UserRepository) *UserService {
	return &UserService{
		log:  log,
		repo: repo,
	}
}

// Register creates the account or refreshes name and password for an
// existing e-mail. The e-mail is normalized so Foo@Bar.com and foo@bar.com
// are the same account.
func (s *UserService) Register(ctx context.Context, input dto.UserRegisterInput) (uuid.UUID, error) {
	const op = "service.UserService.Register"

	email := normalizeEmail(input.Email)
	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.UpsertUser(ctx, models.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passHash,
		Role:         models.RoleUser,
	})
	if err != nil {
		log.Error("failed to save user", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", id.String()))
	return id, nil
}

// Login verifies the credentials and returns the account. Both an unknown
// e-mail and a wrong password collapse into ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	const op = "service.UserService.Login"

	email = normalizeEmail(email)
	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	log.Info("user logged in")
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	const op = "service.UserService.GetUser"

	user, err := s.repo.GetUserById(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/ikkim/minishop-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

type authService struct {
	sessions     SessionFactory
	jwtSecret    string
	accessExpiry time.Duration
	hashPassword func(string) (string, error)
}

func NewAuthService(sessions SessionFactory, jwtSecret string, accessExpiry time.Duration) AuthService {
	return &authService{
		sessions:     sessions,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
		hashPassword: util.HashPassword,
	}
}

func (s *authService) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email":    email,
		"username": username,
	})

	user := &model.User{
		Email:    email,
		Username: username,
		Role:     model.RoleUser,
	}

	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		userRepo := repository.NewUserRepository(sess.DB())

		existing, err := userRepo.FindByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		// Hash only once the email is known to be free.
		hashedPassword, err := s.hashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashedPassword

		if err := userRepo.Create(user); err != nil {
			// Lost a race with a concurrent registration for the same email.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailAlreadyExists
			}
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			logger.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": email,
			})
			return nil, err
		}
		logger.Error("Failed to register user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, nil
}

// Login checks password against the stored hash of the user found by email
// and returns a signed access token. Unknown emails and wrong passwords both
// yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	var user *model.User
	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		var err error
		user, err = repository.NewUserRepository(sess.DB()).FindByEmail(email)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.CreateAccessToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, token, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user *model.User
	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		var err error
		user, err = repository.NewUserRepository(sess.DB()).FindByID(id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

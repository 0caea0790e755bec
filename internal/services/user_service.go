package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/investalk/backend/internal/models"
)

// UserService defines the interface for user-related operations
type UserService interface {
	Register(ctx context.Context, name, email, password string) (models.User, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	Update(ctx context.Context, id uint, name, email string) (models.User, error)
	Delete(ctx context.Context, id uint) error
}

// userService implements the UserService interface
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) UserService {
	return &userService{
		db: db,
	}
}

// Register creates a new user with a hashed password
func (s *userService) Register(ctx context.Context, name, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	user := models.User{
		Name:           name,
		Email:          email,
		HashedPassword: string(hashed),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: a user with this email already exists", ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: a user with this email already exists", ErrConflict)
			}
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// GetByID returns a user by ID
func (s *userService) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return user, nil
}

// Update changes a user's profile fields
func (s *userService) Update(ctx context.Context, id uint, name, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, id)
			}
			return fmt.Errorf("%w: %v", ErrStore, err)
		}

		if name != "" {
			user.Name = name
		}
		if email != "" {
			user.Email = strings.TrimSpace(strings.ToLower(email))
		}

		if err := tx.Save(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: a user with this email already exists", ErrConflict)
			}
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Delete removes a user and all of the user's favorite stocks in one
// transaction; an entry never outlives its owner.
func (s *userService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, id)
			}
			return fmt.Errorf("%w: %v", ErrStore, err)
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.FavoriteStock{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		return nil
	})
}

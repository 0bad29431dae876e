package userservice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"site-panel/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")
)

// UserService is the credential store backed by the users table.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// equalizeWork burns one bcrypt comparison so that an unknown email costs
// the same as a wrong password.
func equalizeWork(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Authenticate returns the user matching email and password, or
// ErrInvalidCredentials. Store errors are returned as-is.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		equalizeWork(password)
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// FindByEmail returns nil, nil when no user has that email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// List returns every user ordered by ascending id, with hashes blanked.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}

	if err := s.db.WithContext(ctx).Select("id", "email").Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// Create hashes password and inserts a new user. A duplicate email yields
// ErrEmailTaken and leaves the existing row untouched.
func (s *UserService) Create(ctx context.Context, email, password string) (*models.User, error) {
	hashedPassword, err := models.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.PasswordHash = ""
	return &user, nil
}

// Delete removes the user with id. Deleting a missing id is not an error.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// EnsureUser creates the user only if the email is not registered yet and
// reports whether it did.
func (s *UserService) EnsureUser(ctx context.Context, email, password string) (bool, error) {
	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if _, err := s.Create(ctx, email, password); err != nil {
		// lost a race with another creator
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

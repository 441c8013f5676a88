package auth

import (
	"errors"
	"time"

	domain "github.com/creativity-code/planora/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = errors.New("user with this username or email already exists")
	// ErrCodeNotFound is returned when a verification code or reset token
	// does not match.
	ErrCodeNotFound = errors.New("code not found")
)

// UserRepository handles user and credential persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(user *domain.User) error {
	result := r.db.Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return result.Error
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindByUsername finds a user by username.
func (r *UserRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindByEmail finds a user by email.
func (r *UserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// Exists reports whether a user with the given username or email exists.
func (r *UserRepository) Exists(username, email string) (bool, error) {
	var count int64
	result := r.db.Model(&domain.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// MarkVerified flips a user's verified flag.
func (r *UserRepository) MarkVerified(userID uint) error {
	return r.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("verified", true).Error
}

// UpdateProfile replaces a user's display name and username.
func (r *UserRepository) UpdateProfile(userID uint, name, username string) error {
	result := r.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{"name": name, "username": username})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return result.Error
	}
	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(userID uint, passwordHash string) error {
	return r.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

// SetProfilePicture replaces a user's profile picture URL.
func (r *UserRepository) SetProfilePicture(userID uint, url string) error {
	return r.db.Model(&domain.User{}).Where("id = ?", userID).
		Update("profile_picture", url).Error
}

// CreateVerificationCode stores a verification code for a user.
func (r *UserRepository) CreateVerificationCode(userID uint, code string) error {
	return r.db.Create(&domain.VerificationCode{
		UserID:    userID,
		Code:      code,
		CreatedAt: time.Now(),
	}).Error
}

// ConsumeVerificationCode checks a code and deletes all of the user's codes
// when it matches.
func (r *UserRepository) ConsumeVerificationCode(userID uint, code string) error {
	var vc domain.VerificationCode
	result := r.db.First(&vc, "user_id = ? AND code = ?", userID, code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrCodeNotFound
		}
		return result.Error
	}
	return r.db.Where("user_id = ?", userID).Delete(&domain.VerificationCode{}).Error
}

// CreateResetToken stores a password reset token for a user.
func (r *UserRepository) CreateResetToken(userID uint, token string) error {
	return r.db.Create(&domain.ResetToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
	}).Error
}

// ConsumeResetToken checks a reset token and deletes all of the user's
// tokens when it matches.
func (r *UserRepository) ConsumeResetToken(userID uint, token string) error {
	var rt domain.ResetToken
	result := r.db.First(&rt, "user_id = ? AND token = ?", userID, token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrCodeNotFound
		}
		return result.Error
	}
	return r.db.Where("user_id = ?", userID).Delete(&domain.ResetToken{}).Error
}

package user

import "time"

// User owns zero or more tasks. Accounts start unverified and cannot log in
// until the emailed verification code is confirmed.
type User struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"size:100" json:"name"`
	Username       string    `gorm:"size:100;uniqueIndex" json:"username"`
	Email          string    `gorm:"size:200;uniqueIndex" json:"email"`
	PasswordHash   string    `gorm:"size:100;not null" json:"-"`
	Role           string    `gorm:"size:20" json:"role"`
	AccountType    string    `gorm:"size:20" json:"account_type"`
	Verified       bool      `gorm:"not null;default:false" json:"is_verified"`
	ProfilePicture string    `gorm:"size:500" json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}

// VerificationCode is a one-time email verification code issued at
// registration and deleted once confirmed.
type VerificationCode struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"index;not null"`
	Code      string    `gorm:"size:10;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for the VerificationCode model.
func (VerificationCode) TableName() string {
	return "verification_codes"
}

// ResetToken is a one-time password reset token, deleted once used.
type ResetToken struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"index;not null"`
	Token     string    `gorm:"size:10;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for the ResetToken model.
func (ResetToken) TableName() string {
	return "reset_tokens"
}

// Claims is the authenticated identity attached to a request.
type Claims struct {
	UserID   uint
	Username string
	Email    string
}

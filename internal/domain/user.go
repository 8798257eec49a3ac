package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	IsApproved   bool      `json:"isApproved"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserInfo is the wire shape of a user, without credential material.
type UserInfo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	IsApproved bool   `json:"isApproved"`
	IsAdmin    bool   `json:"isAdmin"`
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		IsApproved: u.IsApproved,
		IsAdmin:    u.IsAdmin,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phoneNumber"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId,omitempty"`
}

// UpdateUserRequest carries the self-serviceable fields. Email, password and
// role flags are never mutable through profile updates.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phoneNumber,omitempty"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if r.Phone == "" {
		return fmt.Errorf("%w: phone number is required", ErrValidation)
	}
	if !isValidPhone(r.Phone) {
		return fmt.Errorf("%w: invalid phone format", ErrValidation)
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	return nil
}

func (r *UpdateUserRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if r.Phone != nil && !isValidPhone(*r.Phone) {
		return fmt.Errorf("%w: invalid phone format", ErrValidation)
	}
	return nil
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\+]?[\d\s\-\(\)]+$`)
)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func isValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone) && len(phone) >= 7
}

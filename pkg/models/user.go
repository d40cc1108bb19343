package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// emailRE is the simple address pattern applied to user emails and document
// creators: something, an @, something, a dot, something.
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is an individually authorized account.
type User struct {
	// ID is the database-assigned primary key.
	ID uint `gorm:"primaryKey" json:"pk"`

	CreatedAt time.Time `json:"time_created"`
	UpdatedAt time.Time `json:"time_updated"`

	// Email is the unique address the user authenticates with.
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// Superuser grants access to user and domain management.
	Superuser bool `gorm:"default:false" json:"superuser"`

	// Access is reserved for future use.
	Access *int `json:"access"`
}

// editableUserColumns is the whitelist of columns the update path may touch.
var editableUserColumns = map[string]bool{
	"email":     true,
	"superuser": true,
	"access":    true,
}

func (u *User) validate() error {
	if err := validation.ValidateStruct(u,
		validation.Field(&u.Email, validation.Required, validation.Match(emailRE)),
	); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// Create inserts the user after validating its email.
func (u *User) Create(db *gorm.DB) error {
	if err := u.validate(); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&User{}).
			Where("email = ?", u.Email).
			Count(&count).
			Error; err != nil {
			return fmt.Errorf("checking for existing user: %w", err)
		}
		if count > 0 {
			return &ConflictError{Field: "email", Value: u.Email}
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Field: "email", Value: u.Email}
			}
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	})
}

// Get loads the user with the given primary key.
func (u *User) Get(db *gorm.DB, id uint) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.First(u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "user", Key: fmt.Sprint(id)}
		}
		return fmt.Errorf("getting user %d: %w", id, err)
	}
	return nil
}

// GetByEmail loads the user with the given email.
func (u *User) GetByEmail(db *gorm.DB, email string) error {
	if err := validation.Validate(email, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.Where("email = ?", email).First(u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "user", Key: email}
		}
		return fmt.Errorf("getting user %q: %w", email, err)
	}
	return nil
}

// Update applies the given column values through the editable-columns
// whitelist.
func (u *User) Update(db *gorm.DB, updates map[string]any) error {
	if err := validation.Validate(u.ID, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}

	filtered := make(map[string]any, len(updates))
	for column, value := range updates {
		if !editableUserColumns[column] {
			continue
		}
		if column == "email" {
			s, ok := value.(string)
			if !ok || !emailRE.MatchString(s) {
				return &ValidationError{
					Err: fmt.Errorf("invalid email %v", value),
				}
			}
		}
		filtered[column] = value
	}
	if len(filtered) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(u).Updates(filtered).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{
					Field: "email",
					Value: fmt.Sprint(filtered["email"]),
				}
			}
			return fmt.Errorf("updating user %d: %w", u.ID, err)
		}
		if err := tx.First(u, u.ID).Error; err != nil {
			return fmt.Errorf("reloading user after update: %w", err)
		}
		return nil
	})
}

// Delete removes the user.
func (u *User) Delete(db *gorm.DB) error {
	if err := validation.Validate(u.ID, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.Delete(u).Error; err != nil {
		return fmt.Errorf("deleting user %d: %w", u.ID, err)
	}
	return nil
}

// GetAllUsers returns every user ordered by email.
func GetAllUsers(db *gorm.DB) ([]User, error) {
	var users []User
	if err := db.Order("email ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetAllSuperusers returns every user with the superuser flag set.
func GetAllSuperusers(db *gorm.DB) ([]User, error) {
	var users []User
	if err := db.
		Where("superuser = ?", true).
		Order("email ASC").
		Find(&users).
		Error; err != nil {
		return nil, fmt.Errorf("listing superusers: %w", err)
	}
	return users, nil
}

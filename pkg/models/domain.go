package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// domainRE is the simple pattern applied to authorized email domains, e.g.
// "example.com".
var domainRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.-]*\.[A-Za-z]{2,}$`)

// Domain authorizes every address under an email domain.
type Domain struct {
	// ID is the database-assigned primary key.
	ID uint `gorm:"primaryKey" json:"pk"`

	CreatedAt time.Time `json:"time_created"`
	UpdatedAt time.Time `json:"time_updated"`

	// EmailDomain is the unique domain suffix (the part after "@").
	EmailDomain string `gorm:"uniqueIndex;not null" json:"email_domain"`

	// Access is reserved for future use.
	Access *int `json:"access"`
}

// editableDomainColumns is the whitelist of columns the update path may touch.
var editableDomainColumns = map[string]bool{
	"email_domain": true,
	"access":       true,
}

func (d *Domain) validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.EmailDomain, validation.Required, validation.Match(domainRE)),
	); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// Create inserts the domain after validating its pattern.
func (d *Domain) Create(db *gorm.DB) error {
	if err := d.validate(); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&Domain{}).
			Where("email_domain = ?", d.EmailDomain).
			Count(&count).
			Error; err != nil {
			return fmt.Errorf("checking for existing domain: %w", err)
		}
		if count > 0 {
			return &ConflictError{Field: "email_domain", Value: d.EmailDomain}
		}
		if err := tx.Create(d).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Field: "email_domain", Value: d.EmailDomain}
			}
			return fmt.Errorf("creating domain: %w", err)
		}
		return nil
	})
}

// Get loads the domain with the given primary key.
func (d *Domain) Get(db *gorm.DB, id uint) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.First(d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "domain", Key: fmt.Sprint(id)}
		}
		return fmt.Errorf("getting domain %d: %w", id, err)
	}
	return nil
}

// GetByEmailDomain loads the domain with the given suffix.
func (d *Domain) GetByEmailDomain(db *gorm.DB, emailDomain string) error {
	if err := validation.Validate(emailDomain, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.Where("email_domain = ?", emailDomain).First(d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "domain", Key: emailDomain}
		}
		return fmt.Errorf("getting domain %q: %w", emailDomain, err)
	}
	return nil
}

// Update applies the given column values through the editable-columns
// whitelist.
func (d *Domain) Update(db *gorm.DB, updates map[string]any) error {
	if err := validation.Validate(d.ID, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}

	filtered := make(map[string]any, len(updates))
	for column, value := range updates {
		if !editableDomainColumns[column] {
			continue
		}
		if column == "email_domain" {
			s, ok := value.(string)
			if !ok || !domainRE.MatchString(s) {
				return &ValidationError{
					Err: fmt.Errorf("invalid email domain %v", value),
				}
			}
		}
		filtered[column] = value
	}
	if len(filtered) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(d).Updates(filtered).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{
					Field: "email_domain",
					Value: fmt.Sprint(filtered["email_domain"]),
				}
			}
			return fmt.Errorf("updating domain %d: %w", d.ID, err)
		}
		if err := tx.First(d, d.ID).Error; err != nil {
			return fmt.Errorf("reloading domain after update: %w", err)
		}
		return nil
	})
}

// Delete removes the domain.
func (d *Domain) Delete(db *gorm.DB) error {
	if err := validation.Validate(d.ID, validation.Required); err != nil {
		return &ValidationError{Err: err}
	}
	if err := db.Delete(d).Error; err != nil {
		return fmt.Errorf("deleting domain %d: %w", d.ID, err)
	}
	return nil
}

// GetAllDomains returns every domain ordered by suffix.
func GetAllDomains(db *gorm.DB) ([]Domain, error) {
	var domains []Domain
	if err := db.Order("email_domain ASC").Find(&domains).Error; err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	return domains, nil
}

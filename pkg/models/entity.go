package models

import (
	"strings"

	"gorm.io/gorm"
)

// Entity is the resolved authorization subject behind a verified email:
// either a User (exact address match) or a Domain (suffix match). User match
// takes precedence; a caller never resolves to both.
type Entity interface {
	// IsSuperuser reports whether the entity carries elevated privilege.
	// Only Users can be superusers; every Domain answers false.
	IsSuperuser() bool
}

// IsSuperuser implements Entity.
func (u *User) IsSuperuser() bool { return u.Superuser }

// IsSuperuser implements Entity. Domains never hold elevated privilege,
// regardless of their access field.
func (d *Domain) IsSuperuser() bool { return false }

// ResolveEntity maps a verified email address to its authorization entity.
// A User with exactly that email wins; failing that, a Domain matching the
// address's suffix. If neither exists the caller is unauthenticated for
// application purposes and a NotFoundError is returned.
func ResolveEntity(db *gorm.DB, email string) (Entity, error) {
	var user User
	err := user.GetByEmail(db, email)
	if err == nil {
		return &user, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return nil, &NotFoundError{Resource: "entity", Key: email}
	}
	suffix := email[at+1:]

	var domain Domain
	err = domain.GetByEmailDomain(db, suffix)
	if err == nil {
		return &domain, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	return nil, &NotFoundError{Resource: "entity", Key: email}
}

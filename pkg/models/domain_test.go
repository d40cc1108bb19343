package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain_Create(t *testing.T) {
	t.Run("valid domain", func(t *testing.T) {
		db := setupTest(t)

		d := &Domain{EmailDomain: "example.com"}
		require.NoError(t, d.Create(db))
		assert.NotZero(t, d.ID)
	})

	t.Run("rejects malformed domain", func(t *testing.T) {
		db := setupTest(t)

		for _, domain := range []string{"", "nodot", "-leading.com", "has space.com", "trailingdot."} {
			d := &Domain{EmailDomain: domain}
			err := d.Create(db)
			assert.True(t, IsValidation(err), "domain %q should be rejected", domain)
		}
	})

	t.Run("rejects duplicate domain", func(t *testing.T) {
		db := setupTest(t)

		require.NoError(t, (&Domain{EmailDomain: "dup.example.com"}).Create(db))
		err := (&Domain{EmailDomain: "dup.example.com"}).Create(db)
		assert.True(t, IsConflictOn(err, "email_domain"))
	})
}

func TestDomain_Update(t *testing.T) {
	db := setupTest(t)

	d := &Domain{EmailDomain: "old.example.com"}
	require.NoError(t, d.Create(db))

	require.NoError(t, d.Update(db, map[string]any{"email_domain": "new.example.com"}))

	var got Domain
	require.NoError(t, got.Get(db, d.ID))
	assert.Equal(t, "new.example.com", got.EmailDomain)

	err := d.Update(db, map[string]any{"email_domain": "bad domain"})
	assert.True(t, IsValidation(err))

	require.NoError(t, (&Domain{EmailDomain: "taken.example.com"}).Create(db))
	err = d.Update(db, map[string]any{"email_domain": "taken.example.com"})
	assert.True(t, IsConflictOn(err, "email_domain"))
}

func TestDomain_Delete(t *testing.T) {
	db := setupTest(t)

	d := &Domain{EmailDomain: "gone.example.com"}
	require.NoError(t, d.Create(db))
	require.NoError(t, d.Delete(db))

	var got Domain
	err := got.Get(db, d.ID)
	assert.True(t, IsNotFound(err))
}

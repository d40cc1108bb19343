package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stp-archive/catalog/internal/auth"
	"github.com/stp-archive/catalog/internal/server"
	"github.com/stp-archive/catalog/pkg/models"
)

// echoVerifier treats the raw bearer token as the caller's email, letting
// tests authenticate as anyone without minting real tokens.
type echoVerifier struct{}

func (echoVerifier) Verify(_ context.Context, rawToken string) (*auth.Identity, error) {
	if rawToken == "reject" {
		return nil, errors.New("token rejected")
	}
	return &auth.Identity{Email: rawToken}, nil
}

// setupTest builds a server backed by a per-test in-memory sqlite database.
func setupTest(t *testing.T) server.Server {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"),
	)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return server.Server{
		DB:            db,
		Logger:        hclog.NewNullLogger(),
		TokenVerifier: echoVerifier{},
	}
}

// seedUser inserts a user for authenticating test requests.
func seedUser(t *testing.T, db *gorm.DB, email string, superuser bool) *models.User {
	t.Helper()

	u := &models.User{Email: email, Superuser: superuser}
	require.NoError(t, u.Create(db))
	return u
}

// seedDomain inserts an authorized email domain.
func seedDomain(t *testing.T, db *gorm.DB, emailDomain string) *models.Domain {
	t.Helper()

	d := &models.Domain{EmailDomain: emailDomain}
	require.NoError(t, d.Create(db))
	return d
}

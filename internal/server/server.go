package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/stp-archive/catalog/internal/auth"
	"github.com/stp-archive/catalog/internal/config"
)

// Server carries the shared dependencies handed to every HTTP handler.
// There is no global state: the store handle, logger, and token verifier are
// constructed once at startup and passed in explicitly.
type Server struct {
	// Config is the loaded server configuration.
	Config *config.Config

	// DB is the shared database handle.
	DB *gorm.DB

	// Logger is the root logger for the server.
	Logger hclog.Logger

	// TokenVerifier validates inbound bearer tokens.
	TokenVerifier auth.Verifier
}

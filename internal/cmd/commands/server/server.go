package server

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/stp-archive/catalog/internal/api"
	"github.com/stp-archive/catalog/internal/auth"
	"github.com/stp-archive/catalog/internal/cmd/base"
	"github.com/stp-archive/catalog/internal/config"
	"github.com/stp-archive/catalog/internal/db"
	"github.com/stp-archive/catalog/internal/server"
)

type Command struct {
	*base.Command

	flagConfig string
	flagAddr   string
}

func (c *Command) Synopsis() string {
	return "Run the catalog server"
}

func (c *Command) Help() string {
	return `Usage: catalog server -config=<config file>

  This command runs the catalog HTTP server.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("server", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl",
		"Path to the configuration file",
	)
	f.StringVar(
		&c.flagAddr, "addr", "",
		"Listen address, overriding the configuration file",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.FromFile(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}
	if c.flagAddr != "" {
		cfg.ListenAddr = c.flagAddr
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "catalog",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	database, err := db.NewDB(cfg.Database, log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to the database: %v", err))
		return 1
	}

	verifier, err := buildVerifier(cfg.Auth)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error configuring token verification: %v", err))
		return 1
	}

	srv := server.Server{
		Config:        cfg,
		DB:            database,
		Logger:        log,
		TokenVerifier: verifier,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, srv)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "address", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		c.UI.Error(fmt.Sprintf("server error: %v", err))
		return 1
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			c.UI.Error(fmt.Sprintf("error shutting down server: %v", err))
			return 1
		}
	}

	return 0
}

// buildVerifier constructs the token verifier the configured auth mode calls
// for.
func buildVerifier(cfg *config.Auth) (auth.Verifier, error) {
	switch cfg.Mode {
	case config.AuthModeOIDC:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return auth.NewOIDCVerifier(ctx, cfg.Issuer, cfg.ClientID)
	case config.AuthModeLocal:
		return auth.NewLocalVerifier(cfg.LocalSecret), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// registerRoutes wires every API route with its middleware chain. Routes
// other than the health check require a verified identity resolving to a
// known entity; single-resource user and domain routes additionally require
// superuser privilege.
func registerRoutes(mux *http.ServeMux, srv server.Server) {
	protect := func(h http.Handler) http.Handler {
		return api.RequestID(srv.Logger,
			api.CORS(
				api.VerifyToken(srv,
					api.ResolveEntity(srv, h))))
	}
	protectSuperuser := func(h http.Handler) http.Handler {
		return protect(api.RequireSuperuser(srv, h))
	}

	// Health check stays open; everything else needs a resolved entity.
	mux.Handle("/api/pong", api.RequestID(srv.Logger, api.CORS(api.PingHandler(srv))))

	mux.Handle("/api/documents", protect(api.DocumentsHandler(srv)))
	mux.Handle("/api/documents/upload_file", protect(api.UploadHandler(srv)))
	mux.Handle("/api/documents/", protect(api.DocumentHandler(srv)))

	mux.Handle("/api/users", protect(api.UsersHandler(srv)))
	mux.Handle("/api/users/", protectSuperuser(api.UserHandler(srv)))
	mux.Handle("/api/admins", protect(api.AdminsHandler(srv)))

	mux.Handle("/api/domains", protect(api.DomainsHandler(srv)))
	mux.Handle("/api/domains/", protectSuperuser(api.DomainHandler(srv)))
}

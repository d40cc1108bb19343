package token

import (
	"flag"
	"fmt"
	"time"

	"github.com/stp-archive/catalog/internal/auth"
	"github.com/stp-archive/catalog/internal/cmd/base"
	"github.com/stp-archive/catalog/internal/config"
)

type Command struct {
	*base.Command

	flagConfig string
	flagEmail  string
	flagTTL    time.Duration
}

func (c *Command) Synopsis() string {
	return "Mint a local-mode bearer token"
}

func (c *Command) Help() string {
	return `Usage: catalog token -config=<config file> -email=<address>

  This command signs a bearer token for the given email address using the
  local auth secret. Only valid when auth mode is "local".` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("token", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl",
		"Path to the configuration file",
	)
	f.StringVar(
		&c.flagEmail, "email", "",
		"Email address to embed in the token",
	)
	f.DurationVar(
		&c.flagTTL, "ttl", 24*time.Hour,
		"Token lifetime",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagEmail == "" {
		c.UI.Error("email is required (-email)")
		return 1
	}

	cfg, err := config.FromFile(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}
	if cfg.Auth.Mode != config.AuthModeLocal {
		c.UI.Error("token minting requires local auth mode")
		return 1
	}

	signed, err := auth.SignLocalToken(cfg.Auth.LocalSecret, c.flagEmail, c.flagTTL)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error signing token: %v", err))
		return 1
	}

	c.UI.Output(signed)
	return 0
}

package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/stp-archive/catalog/internal/cmd/base"
	"github.com/stp-archive/catalog/internal/cmd/commands/migrate"
	"github.com/stp-archive/catalog/internal/cmd/commands/server"
	"github.com/stp-archive/catalog/internal/cmd/commands/token"
	"github.com/stp-archive/catalog/internal/cmd/commands/version"
)

// Commands maps subcommand names to their factories.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	baseCommand := &base.Command{
		Log: log,
		UI:  ui,
	}

	Commands = map[string]cli.CommandFactory{
		"server": func() (cli.Command, error) {
			return &server.Command{Command: baseCommand}, nil
		},
		"migrate": func() (cli.Command, error) {
			return &migrate.Command{Command: baseCommand}, nil
		},
		"token": func() (cli.Command, error) {
			return &token.Command{Command: baseCommand}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: baseCommand}, nil
		},
	}
}

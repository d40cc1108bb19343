package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/stp-archive/catalog/internal/version"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	log := hclog.New(&hclog.LoggerOptions{
		Name: "catalog",
	})

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	initCommands(log, ui)

	// Running bare starts the server; bare version flags run the version
	// command.
	sub := args[1:]
	switch {
	case len(sub) == 0:
		sub = []string{"server"}
	case sub[0] == "-v" || sub[0] == "-version" || sub[0] == "--version":
		sub = []string{"version"}
	}

	c := &cli.CLI{
		Name:       "catalog",
		Args:       sub,
		Version:    version.Version,
		Commands:   Commands,
		HelpFunc:   cli.BasicHelpFunc("catalog"),
		HelpWriter: os.Stdout,
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(fmt.Sprintf("error running command: %v", err))
		return 1
	}

	return exitCode
}

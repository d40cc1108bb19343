package version

import (
	"github.com/stp-archive/catalog/internal/cmd/base"
	"github.com/stp-archive/catalog/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: catalog version

  This command prints the catalog version.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}

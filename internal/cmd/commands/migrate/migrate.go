package migrate

import (
	"flag"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/stp-archive/catalog/internal/cmd/base"
	"github.com/stp-archive/catalog/internal/config"
	"github.com/stp-archive/catalog/internal/db"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Create the catalog database tables"
}

func (c *Command) Help() string {
	return `Usage: catalog migrate -config=<config file>

  This command creates the catalog tables in the configured database.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("migrate", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl",
		"Path to the configuration file",
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

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "catalog",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	database, err := db.NewDB(cfg.Database, log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to the database: %v", err))
		return 1
	}

	if err := db.CreateTables(database); err != nil {
		c.UI.Error(fmt.Sprintf("error creating tables: %v", err))
		return 1
	}

	c.UI.Info("Tables created.")
	return 0
}

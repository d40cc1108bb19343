// Package base carries the pieces shared by every CLI command.
package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded in each CLI command to provide the logger and UI.
type Command struct {
	// Log is the root logger handed down from main.
	Log hclog.Logger

	// UI is used for command input and output.
	UI cli.Ui
}

// FlagSet wraps the standard flag set with help rendering.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a flag set ready for command use.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help renders the flag defaults as an options block for command help text.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	f.SetOutput(&buf)
	f.PrintDefaults()
	return "\n\nOptions:\n" + buf.String()
}

package main

import (
	"os"

	"github.com/stp-archive/catalog/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}

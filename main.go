package main

import (
	"os"

	"github.com/bulwarkhq/bulwark/cli"
)

func main() {
	os.Exit(cli.Execute())
}

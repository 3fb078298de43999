// Command reflow is the CLI entry point for the schedule reflow engine.
package main

import (
	"os"

	"github.com/compozy/reflow/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// bioterm is the command-line interface for BioTerm-Annotator.
package main

import (
	"os"

	"github.com/turtacn/BioTerm-Annotator/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}

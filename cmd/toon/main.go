// toon encodes JSON and YAML documents as Token-Oriented Object Notation.
package main

import (
	"os"

	"github.com/hupe1980/toon/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

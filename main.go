package main

import (
	"os"

	"github.com/TFMV/tenlab/cli"
)

func main() {
	os.Exit(cli.Execute())
}

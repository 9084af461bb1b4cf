package main

import (
	"os"

	"github.com/dkoh/mend/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

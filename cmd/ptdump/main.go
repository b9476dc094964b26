package main

import (
	"os"

	"github.com/evenbily/processor-trace/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

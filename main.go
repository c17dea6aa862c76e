package main

import (
	"os"

	"notepost/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}

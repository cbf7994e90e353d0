package main

import (
	"os"

	"github.com/utkarsh5026/seqpar/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

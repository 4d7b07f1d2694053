package main

import (
	"context"
	"os"

	"github.com/promptops/ctxpack/internal/cli"
)

// main hands straight off to the CLI package so the binary stays testable.
func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

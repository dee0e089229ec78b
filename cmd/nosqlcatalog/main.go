// Package main is the entry point for the nosqlcatalog binary.
package main

import (
	"os"

	"nosql-catalog/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// Package main is the DataGrid CLI entrypoint.
package main

import (
	"os"

	"github.com/leapstack-labs/datagrid/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

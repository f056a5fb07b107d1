// Package main provides the synthward CLI entrypoint.
package main

import "github.com/synthward-labs/synthward/internal/cli"

func main() {
	cli.Execute()
}

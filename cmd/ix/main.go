// Package main is the entry point for the ix CLI.
package main

import (
	"github.com/scopeforge/impactscope/internal/cmd"
)

func main() {
	cmd.Execute()
}

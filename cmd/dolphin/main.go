// Package main is the entry point for the dolphin bot.
package main

import (
	"os"

	"github.com/dolphinbot/dolphin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

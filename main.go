// Package main is the entry point for the issuemirror CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/termlink/issuemirror/cmd"
	"github.com/termlink/issuemirror/internal/logging"
)

// main executes the root command and handles any errors that occur.
func main() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logging.Info("starting issuemirror", "log_level", logLevel)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

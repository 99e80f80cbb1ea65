// Package main is the entry point for the application router.
package main

import (
	"os"

	"github.com/vxgo/approuter/cmd/approuter/app"
	"github.com/vxgo/approuter/pkg/logger"
)

func main() {
	// Initialize the logger
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

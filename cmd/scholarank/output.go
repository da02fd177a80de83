package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/scholarank/internal/config"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError writes a message to stderr and exits.
func exitWithError(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(code)
}

// warn writes a non-fatal diagnostic to stderr.
func warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

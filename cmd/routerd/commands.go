// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "routerd",
		Short: "A CLI to run and query the privacy-preserving inference router",
		Long: `routerd loads a persona/model-registry configuration and either runs
the router as a long-lived HTTP daemon (serve) or makes a single routing
decision for scripting and debugging (route).`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the router as a long-lived HTTP daemon",
		RunE:  runServe,
	}

	routeCmd = &cobra.Command{
		Use:   "route [persona-id]",
		Short: "Make a single routing decision and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoute,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the router configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("cloud-api-key-env", "OPENAI_API_KEY", "Environment variable holding the direct/cloud backend API key")

	rootCmd.AddCommand(routeCmd)
}

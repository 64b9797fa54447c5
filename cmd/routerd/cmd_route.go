// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/internal/core"
	"github.com/privacyrouter/core/internal/router"
)

// runRoute loads the configuration, builds just enough of a Core to
// probe local-model availability, and prints the routing decision for
// the named persona as JSON -- a one-shot debugging aid, per
// SPEC_FULL.md §11's "routerd route" command.
func runRoute(cmd *cobra.Command, args []string) error {
	personaID := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	persona, ok := cfg.FindPersona(personaID)
	if !ok {
		return fmt.Errorf("unknown persona id %q", personaID)
	}

	c, err := core.New(cfg, newLogger(), "")
	if err != nil {
		return err
	}
	defer c.Close()

	decision := router.MakeRoutingDecision(persona, c.Inference.IsAvailable())
	router.AuditLogDecision(c.Log, persona.ID, decision)

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/privacyrouter/core/pkg/logging"
)

// StartWarmup launches the background preload task spec.md §4.1 "Warm-up"
// describes: fire-and-forget, never blocking the caller, logging outcome.
// The returned func blocks until the warm-up finishes, for callers (like a
// graceful-shutdown path) that want to join it; daemons should not call it.
func StartWarmup(ctx context.Context, host *LocalHost, log *logging.Logger) func() error {
	if !host.IsAvailable() {
		log.Info("skipping local model warm-up, no local model file is available")
		return func() error { return nil }
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := host.Preload(gctx); err != nil {
			log.Warn("local model warm-up failed", "error", err)
			return nil // warm-up failure is non-fatal per spec.md §5
		}
		log.Info("local model warm-up complete", "model_id", host.Status().ActiveModelID)
		return nil
	})
	return g.Wait
}

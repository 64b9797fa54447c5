// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package httpapi

import "errors"

var errUnsupportedByExternalDaemon = errors.New("model management is not supported under FORCE_EXTERNAL_INFERENCE, the daemon owns its own model lifecycle")

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package socialgraph

import "errors"

var (
	// ErrGraphNotLoaded is returned by queries made before the first
	// successful load.
	ErrGraphNotLoaded = errors.New("graph not loaded")

	// ErrNoSource is returned by Load and Watch when the service was created
	// without an edge-list path.
	ErrNoSource = errors.New("no edge-list source configured")
)

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command socialgraph serves and queries an in-memory social graph.
//
// The graph is built from an edge list, one "<from> <to>" pair of integer
// user IDs per line (the SNAP facebook_combined.txt format).
//
// Usage:
//
//	socialgraph serve --source dataset/facebook_combined.txt
//	socialgraph stats dataset/facebook_combined.txt
//	socialgraph neighbors dataset/facebook_combined.txt 0
//	socialgraph path dataset/facebook_combined.txt 0 4038
//	socialgraph recommend dataset/facebook_combined.txt 0 --limit 10 --detailed
//	socialgraph communities dataset/facebook_combined.txt --json
//
// Example requests against a running server:
//
//	curl http://localhost:5000/api/graph/stats
//	curl http://localhost:5000/api/graph/recommendations/0?limit=5
//	curl "http://localhost:5000/api/graph/shortest-path?start=0&end=4038"
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
)

const (
	// readBufferSize is the bufio buffer; longer lines arrive in fragments.
	readBufferSize = 64 * 1024

	// maxLineBytes bounds how much of a single line is kept for parsing.
	// Longer lines are consumed to the next newline and skipped.
	maxLineBytes = 1 << 20
)

// ParseLine parses one edge-list line of the form "<int> <int>".
//
// Description:
//
//	Splits on whitespace and accepts the line only when it has exactly two
//	fields and both are base-10 64-bit integers. Anything else (blank
//	lines, comments, headers, three-column lines) is rejected.
//
// Outputs:
//
//	graph.Edge - The parsed edge (zero value when rejected).
//	bool - True if the line is a valid edge.
func ParseLine(line string) (graph.Edge, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return graph.Edge{}, false
	}

	from, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return graph.Edge{}, false
	}
	to, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return graph.Edge{}, false
	}

	return graph.Edge{From: graph.VertexID(from), To: graph.VertexID(to)}, true
}

// EdgeReader filters a stream of text lines down to parsed edges.
//
// Rejected lines are dropped and counted, never reported. That includes
// lines longer than maxLineBytes, which are consumed up to the next newline.
// Read errors from the underlying reader end the sequence and are available
// from Err().
//
// Thread Safety: NOT safe for concurrent use.
type EdgeReader struct {
	reader  *bufio.Reader
	buf     []byte
	err     error
	done    bool
	lines   int
	skipped int
}

// NewEdgeReader wraps r in an EdgeReader.
func NewEdgeReader(r io.Reader) *EdgeReader {
	return &EdgeReader{reader: bufio.NewReaderSize(r, readBufferSize)}
}

// All returns the lazy sequence of edges parsed from the remaining input.
//
// Example:
//
//	er := NewEdgeReader(file)
//	for edge := range er.All() {
//	    g.InsertEdge(edge.From, edge.To)
//	}
//	if err := er.Err(); err != nil {
//	    return err
//	}
func (er *EdgeReader) All() iter.Seq[graph.Edge] {
	return func(yield func(graph.Edge) bool) {
		for {
			line, oversized, ok := er.next()
			if !ok {
				return
			}
			er.lines++
			if oversized {
				er.skipped++
				continue
			}
			edge, valid := ParseLine(string(line))
			if !valid {
				er.skipped++
				continue
			}
			if !yield(edge) {
				return
			}
		}
	}
}

// next reads one full line, joining the fragments bufio hands back for
// lines longer than its buffer. A line over maxLineBytes is read to its end
// and reported as oversized with no content. ok is false once the input is
// exhausted or a read failed.
func (er *EdgeReader) next() (line []byte, oversized bool, ok bool) {
	if er.done {
		return nil, false, false
	}

	er.buf = er.buf[:0]
	read := false
	for {
		fragment, isPrefix, err := er.reader.ReadLine()
		if err != nil {
			er.done = true
			if !errors.Is(err, io.EOF) {
				er.err = err
			}
			// A line cut short by the error is still a line.
			return er.buf, oversized, read
		}
		read = true

		if !oversized {
			if len(er.buf)+len(fragment) > maxLineBytes {
				oversized = true
				er.buf = er.buf[:0]
			} else {
				er.buf = append(er.buf, fragment...)
			}
		}
		if !isPrefix {
			return er.buf, oversized, true
		}
	}
}

// Err returns the first non-EOF read error, if any.
func (er *EdgeReader) Err() error {
	return er.err
}

// Lines returns the number of lines consumed so far.
func (er *EdgeReader) Lines() int {
	return er.lines
}

// Skipped returns the number of lines rejected so far.
func (er *EdgeReader) Skipped() int {
	return er.skipped
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader decodes newline-delimited JSON chat frames. It
// accumulates free text in arrival order and collects tool calls with
// per-name de-duplication: a tool enters the pending list at most once
// per stream even when the wire repeats it.
type StreamReader struct {
	reader      *bufio.Reader
	accumulator strings.Builder
	seenTools   map[string]bool
}

// NewStreamReader creates a stream reader over an NDJSON body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader:    bufio.NewReader(r),
		seenTools: make(map[string]bool),
	}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream completes or the context is cancelled.
// Malformed lines are skipped, never fatal.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return ErrCancelled
			}
			return ErrTimeout
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					callback(Chunk{Done: true})
					return nil
				}
				// A cancelled context surfaces as a read error on the
				// response body.
				if errors.Is(ctx.Err(), context.Canceled) {
					return ErrCancelled
				}
				if ctx.Err() != nil {
					return ErrTimeout
				}
				return &ClientError{Type: ErrTypeOffline, Message: "stream interrupted", Cause: err}
			}

			if chunk != nil {
				callback(*chunk)
				if chunk.Done {
					return nil
				}
			}
		}
	}
}

// readChunk reads and parses a single line. A nil chunk with nil error
// means the line was empty or malformed and was skipped.
func (s *StreamReader) readChunk() (*Chunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(strings.TrimSpace(string(line))) == 0 {
			return nil, io.EOF
		}
		if len(line) == 0 {
			return nil, err
		}
		// Process the final unterminated line before reporting EOF.
	}

	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, nil
	}

	var f frame
	if err := json.Unmarshal([]byte(trimmed), &f); err != nil {
		// Skip malformed lines.
		return nil, nil
	}

	if f.Message.Content != "" {
		s.accumulator.WriteString(f.Message.Content)
	}

	chunk := &Chunk{
		Content: f.Message.Content,
		Done:    f.Done,
	}

	for _, tc := range f.Message.ToolCalls {
		if s.recordTool(tc.Function.Name) {
			chunk.ToolCalls = append(chunk.ToolCalls, tc)
		}
	}
	if fc := f.Message.FunctionCall; fc != nil && s.recordTool(fc.Name) {
		chunk.ToolCalls = append(chunk.ToolCalls, ToolCall{
			Function: ToolFunction{Name: fc.Name, Arguments: fc.Arguments},
		})
	}

	return chunk, nil
}

// recordTool marks a tool name as seen; reports whether it was new.
func (s *StreamReader) recordTool(name string) bool {
	if name == "" || s.seenTools[name] {
		return false
	}
	s.seenTools[name] = true
	return true
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

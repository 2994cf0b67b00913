// Package server implements the MCP (Model Context Protocol) server for
// vanishing point estimation.
//
// This package provides a JSON-RPC 2.0 server that exposes the line
// extraction and vanishing point pipeline through the MCP protocol, so a
// client can feed camera frames and read back a steering error.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frames:
//   - image_load: Load a frame and get metadata
//   - vp_detect_lines: Canny + Hough line extraction
//   - vp_edge_detect: Canny edge map as PNG
//
// Estimation:
//   - vp_estimate: One frame through a stream's pipeline, optional overlay
//   - vp_estimate_lines: Same, from externally detected lines
//   - vp_process_sequence: An ordered list of frames plus a summary
//
// Streams:
//   - vp_stream_open: New stream with configuration overrides
//   - vp_stream_reset: Clear a stream's filter history
//   - vp_stream_close: Drop a stream
//   - vp_config: Inspect a stream
//
// # Streams
//
// Temporal filtering makes each result depend on the frames before it, so
// every frame belongs to a stream. Calls without a stream id use the
// "default" stream, which always exists. Frames of one stream are processed
// one at a time in arrival order; different streams run independently.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A frame without a usable estimate is not an error: its result is marked
// degraded and holds the stream's previous output.
//
// # Usage
//
//	srv, err := server.New(config.Default(), logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server

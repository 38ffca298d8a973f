// Package server implements the MCP (Model Context Protocol) server for the
// avatar image tools.
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
// Image tools:
//   - image_load: Decode a source and report its metadata
//   - image_crop: Crop an exact rectangle to a JPEG blob: handle
//   - image_crop_named: Crop a named region (quadrants, halves, center-square)
//   - image_crop_preview: Outline a region on the source before cropping
//   - image_resource_get: Read the bytes behind a blob: handle
//   - image_resource_revoke: Release a blob: handle
//   - image_sample_color: Get the color at a pixel
//   - image_verify_crop: Check a crop against its source region
//
// Profile tools, listed only when a profile service is configured:
//   - profile_get: Read a user's profile
//   - profile_update_picture: Crop, upload and record a new profile picture
//
// # Sources and Handles
//
// Every source argument accepts a file path, a file:// or http(s):// URL, a
// data: URL, or a blob: handle. Crops return blob: handles into the server's
// registry; they stay alive until image_resource_revoke is called, so a
// handle can be fed back in as the source of another tool.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. The data object carries "error" (the Go error string) and, when
// known, "kind": decode_error, invalid_region, surface_unavailable,
// encode_error, blob_not_found, not_found, unauthenticated, invalid_uid or
// canceled.
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server stopped", zap.Error(err))
//	}
package server

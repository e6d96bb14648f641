// Package mcp provides a Model Context Protocol server for Gridball.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for the click and turn commands
//   - Text rendering of the board for language models
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session, list_sessions: session management
//   - game_state: board, selection, range and path
//   - left_click, right_click: pointer input on a (column,row) cell
//   - end_turn: pass control to the enemy
//   - tick: advance a running move by frames
//   - reset_game: restart the level
//   - list_configs: available levels
//   - describe_cell: terrain, occupant and range membership of a cell
//   - game_instructions: full rules
//
// Architecture:
//
// Client owns no game state. Every tool is proxied to the REST API at the
// configured base URL, so the same process can serve MCP over stdio while a
// separate server holds the sessions, or mount the MCP handler next to the
// API on /mcp.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// stdio
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp

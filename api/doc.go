// Package api provides HTTP REST API handlers for Gridball.
//
// The api package implements:
//   - Session management endpoints
//   - Click, end turn, tick and reset commands
//   - Cell inspection
//   - Level listing, loading and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session, body {"config_id": "classic"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions grouped for a side-by-side view
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/click - {"button": "left|right", "column": 3, "row": 4, "settle": true}
//   - POST /api/sessions/{id}/end-turn - Hand the turn to the enemy
//   - POST /api/sessions/{id}/tick - {"frames": 10} advances a running move
//   - POST /api/sessions/{id}/reset - Restart the level
//   - GET /api/sessions/{id}/cells/{column}/{row} - Terrain, occupant, range and path membership
//
// Levels:
//   - GET /api/configs - List levels
//   - GET /api/configs/{name} - Full level definition
//   - POST /api/configs - Save a level; JSON body, or YAML with a yaml Content-Type
//
// Errors are returned as {"error": "..."}. Unknown sessions and levels map to
// 404, invalid levels and off-board coordinates to 400.
//
// Every command that changes a game is broadcast to the session's WebSocket
// clients at /ws?session=<id>.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api

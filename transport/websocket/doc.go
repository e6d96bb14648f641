// Package websocket provides WebSocket transport for Gridball.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every game command
//   - JSON text frames or msgpack binary frames per client
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns every connection. Register, unregister, broadcast and
// count requests all arrive over channels and are handled by the goroutine
// running Hub.Run, so the session map needs no lock. Each client has its own
// read and write pumps.
//
// Message Protocol:
//
// Clients connect to /ws?session=<id>. The first frame is the current game
// state; after that a state_update frame follows every click, end turn, tick
// or reset, carrying the new GameState and the GameEvents that produced it.
// Inbound frames are ignored apart from keeping the connection alive; clients
// act through the REST API.
//
// Adding &encoding=msgpack switches the client to binary frames encoded with
// github.com/vmihailenco/msgpack/v5. Msgpack keys use the json tag names, so
// both encodings decode into the same Message.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, initialState)
//	hub.BroadcastToSession(sessionID, state, events)
package websocket

// Package service provides the business logic layer for Gridball.
//
// The service package implements:
//   - Multi-session game management
//   - Level loading through a ConfigManager
//   - Click, end-turn and frame-tick processing
//   - Translation of engine events into timestamped GameEvents
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages level loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// game engine. Each session owns its own engine; the service serializes all
// access to engines behind one lock, so engines themselves stay single-threaded.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// select the unit at (5,10), plan a path to (5,7), then confirm and
//	// run the move to completion
//	gameService.Click(ctx, sessionInfo.ID, engine.ButtonLeft, 5, 10, false)
//	gameService.Click(ctx, sessionInfo.ID, engine.ButtonRight, 5, 7, false)
//	result, err := gameService.Click(ctx, sessionInfo.ID, engine.ButtonRight, 5, 7, true)
//
// Frames:
//
// A confirmed move animates over several frames. Callers either pass settle to
// Click, which runs frames until the move finishes, or drive frames themselves
// with Tick. Both are bounded by engine.MaxSettleFrames.
package service

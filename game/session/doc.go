// Package session provides session management for Gridball.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Idle session expiry
//
// Core Types:
//
// Manager is the in-memory session registry. Each service.Session it creates
// owns one engine.GameEngine built from a level, plus creation and last access
// times.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand and retried on
// collision. Caller-supplied IDs are accepted as long as they contain no
// spaces or URL separators. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager(engine.WithLogger(logger))
//
//	sess, err := manager.Create("", level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	sessions := manager.List()
//
//	// drop sessions idle for an hour, checking every minute
//	go manager.RunJanitor(ctx, time.Minute, time.Hour)
package session

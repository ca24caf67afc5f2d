// Package session stores the live games of a Robots vs Dinosaurs server.
//
// Manager is created once in main and injected into the game service; there is
// no package-level cache. Games are keyed by short 4-character hex ids that are
// matched case-insensitively. When the short id space is crowded the manager
// falls back to a uuid.
//
// The manager's map is guarded by a RWMutex. It does not lock individual
// games; the service holds each session's own lock while it runs a command.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", &engine.Scenario{GridDim: 10, DinosaurCount: 5})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	// Drop games idle for a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session

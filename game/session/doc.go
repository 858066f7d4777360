// Package session keeps the live playfields of the solver server.
//
// Each session pairs an engine.Field with the board preset it was created
// from. Sessions are addressed by short random hex IDs and looked up
// case-insensitively.
//
// Core Types:
//
// Manager stores sessions in memory and is safe for concurrent use.
// SessionPersistence is the optional storage behind it; FilePersistence
// writes one JSON document per session and restores the board, placement
// history and counters on load.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configMgr)
//	manager := session.NewManagerWithPersistence(persistence)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", preset)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Cleanup:
//
// CleanupExpiredSessions drops idle sessions from memory. Persisted copies
// stay on disk and are reloaded by Get on the next access.
package session

// Package websocket pushes live board updates to viewers of a session.
//
// Viewers connect to /ws?session=<id> and only receive. Each text frame holds
// one JSON message:
//
//	{"session_id": "ab12", "seq": 7, "event": "board_update", "state": {...}}
//	{"session_id": "ab12", "seq": 8, "event": "lock", "data": {...}}
//
// seq counts messages per session starting at 1. A gap means the hub dropped
// frames because its queue was full, and the viewer should wait for the next
// board_update. A viewer that joins late first receives the latest
// board_update of its session.
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastToSession(sessionID, state)
//	hub.Forget(sessionID) // session deleted
package websocket

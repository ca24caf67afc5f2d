// Package websocket pushes live game updates to browser and bot subscribers.
//
// A client subscribes to one game with GET /ws?game=<id>. After each successful
// command the API broadcasts a state_update message carrying the full game
// state; deleting a game sends game_deleted. Incoming client messages are
// ignored apart from keep-alive pongs.
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastState(gameID, game.State())
//
// Only the Run goroutine touches the subscriber map. Broadcasts are queued on a
// buffered channel and dropped with a warning if the hub falls behind.
package websocket

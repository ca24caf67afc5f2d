// Package api exposes the game service over HTTP.
//
// Routes are mounted on a gorilla/mux router under /api: game lifecycle,
// robot commands, dinosaur placement, paginated history, an HTML board view
// and scenario presets. Engine errors map to 400 with a stable error code,
// unknown games and scenarios map to 404. Every state change is pushed to
// WebSocket subscribers of the game through the hub.
package api

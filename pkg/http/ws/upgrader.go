package ws

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
)

// Upgrader handles WebSocket upgrades. Call AllowOrigins at startup to restrict
// browser origins; requests without an Origin header are always accepted.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// AllowOrigins restricts upgrades to the given origins. "*" allows any.
func AllowOrigins(origins []string) {
	Upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, origin)
	}
}

package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"live-trivia-service/internal/app"
	"live-trivia-service/internal/domain"
)

// WSHandler streams state snapshots to clients over a websocket. The
// socket is server-to-client only: mutations go through the JSON API and
// come back here as personalized snapshots.
type WSHandler struct {
	game     *app.Game
	upgrader websocket.Upgrader
}

func NewWSHandler(game *app.Game) *WSHandler {
	return &WSHandler{
		game: game,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type stateMessage struct {
	Type    string          `json:"type"`
	Payload domain.Snapshot `json:"payload"`
}

// ServeWS upgrades the request and subscribes the connection to the
// game. The first snapshot arrives immediately; the subscription ends
// when the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.game.Subscribe(playerID)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for snap := range updates {
			if err := conn.WriteJSON(stateMessage{Type: "state", Payload: snap}); err != nil {
				return
			}
		}
	}()

	// Drain the socket purely to notice disconnects; clients have
	// nothing to say on this channel.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-writerDone:
		// The subscription ended server-side (player removed); the
		// deferred close tears the socket down under the reader.
	case <-readerDone:
		cancel()
		<-writerDone
	}
}

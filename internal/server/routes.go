package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/maiaiia/pseudocronic/internal/relay"
)

// Configure the websocket upgrader. The relay carries no credentials, so all
// origins are accepted; the room code shared out-of-band is the only gate.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024, // 64 KB
	WriteBufferSize: 64 * 1024, // 64 KB
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// New builds the relay's HTTP handler: health, room stats, and the
// per-room websocket endpoint.
func New(hub *relay.Hub, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /stats", statsHandler(hub))
	mux.HandleFunc("GET /ws/{room_id}", ServeWs(hub, logger))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Relay server is healthy."))
}

func statsHandler(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(hub.Stats())
	}
}

// ServeWs returns an http.HandlerFunc that upgrades the connection and
// joins it to the room named in the path. The role is declared by the
// client via the "role" query parameter and defaults to spectator.
func ServeWs(hub *relay.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := relay.CanonicalRoomID(r.PathValue("room_id"))
		if roomID == "" {
			http.Error(w, "room id required", http.StatusBadRequest)
			return
		}
		role := relay.ParseRole(r.URL.Query().Get("role"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("upgrade failed", "err", err)
			return
		}

		client := relay.NewClient(hub, conn, roomID, role)

		if err := hub.Join(client); err != nil {
			reason := "join failed"
			if errors.Is(err, relay.ErrRoomFull) {
				reason = "room_full"
			}
			// No pump is running yet, so writing here is safe.
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, reason))
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

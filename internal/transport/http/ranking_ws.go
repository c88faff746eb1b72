package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type outboundMessage struct {
	Type    string                `json:"type"`
	Payload []domain.RankingEntry `json:"payload"`
}

// rankingWS streams leaderboard snapshots over a websocket: the current
// ranking on connect, then a fresh one each time a participation completes.
// A dedicated writer goroutine keeps connection writes serialized.
func (h *Handler) rankingWS(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	updates, cancel, err := h.ranking.Subscribe(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for update := range updates {
			msg := outboundMessage{Type: "ranking", Payload: update.Entries}
			if msg.Payload == nil {
				msg.Payload = []domain.RankingEntry{}
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Inbound messages are ignored; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-writerDone
}

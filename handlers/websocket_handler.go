package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Dosada05/prediction-league/realtime"
	"github.com/Dosada05/prediction-league/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub          *realtime.Hub
	roundService services.RoundService
}

func NewWebSocketHandler(hub *realtime.Hub, roundService services.RoundService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		roundService: roundService,
	}
}

func (h *WebSocketHandler) register(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту.
		log.Printf("Failed to upgrade connection for room %s: %v", roomID, err)
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// ServeLeaderboard подписывает клиента на обновления сквозного рейтинга.
func (h *WebSocketHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, realtime.LeaderboardRoom)
}

// ServeRound подписывает клиента на обновления рейтинга одного тура.
func (h *WebSocketHandler) ServeRound(w http.ResponseWriter, r *http.Request) {
	roundIDStr := chi.URLParam(r, "roundID")
	roundID, err := strconv.Atoi(roundIDStr)
	if err != nil || roundID <= 0 {
		badRequestResponse(w, r, errors.New("invalid roundID URL parameter"))
		return
	}

	if _, err := h.roundService.GetRound(r.Context(), roundID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.register(w, r, realtime.RoundRoom(roundID))
}

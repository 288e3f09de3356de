package http

import (
	"log"
	"net/http"

	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
	"trivia-quiz-bot/internal/transport/dialog"
	"github.com/gorilla/websocket"
)

// WSHandler adapts the quiz dialogue to a websocket chat: one connection per
// user, one JSON frame per message in either direction. Session keys live in
// the "ws" namespace, so a websocket user and a Telegram user with the same
// id never collide.
type WSHandler struct {
	engine   *app.Engine
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.Engine) *WSHandler {
	return &WSHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Text string `json:"text"`
}

type outboundMessage struct {
	Text     string     `json:"text"`
	State    string     `json:"state"`
	Keyboard [][]string `json:"keyboard,omitempty"`
}

const serviceErrorText = "Что-то пошло не так, попробуйте ещё раз."

// ServeWS upgrades the request and runs the conversation loop until the
// client leaves or the dialogue ends. The conversation state is connection
// local; the scored session itself lives in the shared store.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	userKey := domain.UserKey("ws", userID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	reply := h.engine.Greet(userKey)
	if err := writeReply(conn, reply); err != nil {
		return
	}
	state := reply.State

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		reply, err := dialog.Dispatch(r.Context(), h.engine, userKey, state, inbound.Text)
		if err != nil {
			log.Printf("ws dispatch for %s: %v", userKey, err)
			reply = app.Reply{Text: serviceErrorText, State: state}
		}
		state = reply.State

		if err := writeReply(conn, reply); err != nil {
			return
		}
		if state == domain.StateEnded {
			return
		}
	}
}

func writeReply(conn *websocket.Conn, reply app.Reply) error {
	return conn.WriteJSON(outboundMessage{
		Text:     reply.Text,
		State:    string(reply.State),
		Keyboard: dialog.Keyboard(reply.State),
	})
}

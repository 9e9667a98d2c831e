package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"memberportal/internal/flow"
	"memberportal/internal/model"
	"memberportal/internal/service"
	"memberportal/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// Cosmetic pause before each prompt so the chat reads like typing.
	typingDelay = 600 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler drives conversational survey sessions over WebSocket.
type Handler struct {
	hub     *Hub
	flowSvc *service.FlowService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, flowSvc *service.FlowService) *Handler {
	return &Handler{
		hub:     hub,
		flowSvc: flowSvc,
	}
}

// SurveyWS handles GET /v1/ws/surveys/{surveyId}. Auth runs in the
// member middleware; the token rides the query param for upgrades.
func (h *Handler) SurveyWS(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	memberID := middleware.GetMemberID(r.Context())
	email := middleware.GetEmail(r.Context())

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SurveyID: surveyID,
		MemberID: memberID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, email)
}

// sendStep shows a typing indicator, pauses briefly, then delivers the
// step view. The delay is cosmetic only.
func (h *Handler) sendStep(conn *Connection, view *flow.StepView) {
	h.hub.SendTo(conn.SurveyID, conn.MemberID, MsgTyping, map[string]bool{"typing": true})
	time.Sleep(typingDelay)
	h.hub.SendTo(conn.SurveyID, conn.MemberID, MsgStep, view)
	if view.Status == flow.StatusComplete || view.Status == flow.StatusSubmissionFailed {
		h.hub.SendTo(conn.SurveyID, conn.MemberID, MsgSessionOver, map[string]string{"status": string(view.Status)})
	}
}

func (h *Handler) sendError(conn *Connection, err error) {
	h.hub.SendTo(conn.SurveyID, conn.MemberID, MsgError, map[string]string{"message": err.Error()})
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, email string) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ctx := context.Background()

	// Opening the connection opens (or resumes) the session.
	view, err := h.flowSvc.OpenSession(ctx, conn.SurveyID, conn.MemberID, email)
	if err != nil {
		h.sendError(conn, err)
		return
	}
	h.sendStep(conn, view)

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.sendError(conn, err)
			continue
		}

		switch cmd.Type {
		case CmdAnswer:
			var value model.AnswerValue
			if err := json.Unmarshal(cmd.Answer, &value); err != nil {
				h.sendError(conn, err)
				continue
			}
			view, err := h.flowSvc.Answer(ctx, conn.SurveyID, conn.MemberID, value)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			h.sendStep(conn, view)

		case CmdBack:
			view, err := h.flowSvc.Back(ctx, conn.SurveyID, conn.MemberID)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			h.sendStep(conn, view)

		default:
			// Unknown commands are ignored.
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

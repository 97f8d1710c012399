package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/models"
	"invoice-builder/internal/preview"
	"invoice-builder/internal/render"
	"invoice-builder/internal/session"
	"invoice-builder/pkg/utils"
)

// Websocket message types
const (
	MsgResize  = "resize"
	MsgEdit    = "edit"
	MsgSession = "session"
	MsgScale   = "scale"
	MsgState   = "state"
	MsgError   = "error"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ClientMessage is what the builder page sends. Width is nil when the page
// could not measure its preview container.
type ClientMessage struct {
	Type  string   `json:"type"`
	Width *float64 `json:"width,omitempty"`
	models.EditRequest
}

type sessionMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type scaleMessage struct {
	Type string `json:"type"`
	models.ScaleResponse
}

type stateMessage struct {
	Type string `json:"type"`
	models.TotalsResponse
	Display displayTotals `json:"display"`
}

// displayTotals are the totals as the page prints them, e.g. "¥4,950"
type displayTotals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type PreviewHandler struct {
	hub          *session.Hub
	formatter    *render.Formatter
	nominalWidth float64
	padding      float64
}

func NewPreviewHandler(hub *session.Hub, formatter *render.Formatter, nominalWidth, padding float64) *PreviewHandler {
	return &PreviewHandler{hub: hub, formatter: formatter, nominalWidth: nominalWidth, padding: padding}
}

// Scale answers the preview scale for a container width without a session
func (h *PreviewHandler) Scale(w http.ResponseWriter, r *http.Request) {
	var req models.ScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	scale, ok := preview.FitScale(req.ContainerWidth, h.padding, h.nominalWidth)
	if !ok {
		utils.Error(w, http.StatusUnprocessableEntity, "Container has no usable width")
		return
	}
	utils.JSON(w, http.StatusOK, scaleResponse(preview.Transform{Scale: scale, Origin: preview.TransformOrigin}))
}

// Live runs one builder page. The session lives exactly as long as the
// connection.
func (h *PreviewHandler) Live(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Preview] WebSocket upgrade error:", err)
		return
	}
	c := &conn{ws: ws}
	defer ws.Close()

	s := h.hub.Create()
	defer h.hub.Remove(s.ID)

	c.send(sessionMessage{Type: MsgSession, ID: s.ID})
	c.send(h.stateMessage(s.Snapshot()))

	unmount := s.Scaler().Mount(s.Viewport(), func(t preview.Transform) {
		c.send(scaleMessage{Type: MsgScale, ScaleResponse: scaleResponse(t)})
	})
	defer unmount()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Preview] Session %s read error: %v", s.ID, err)
			}
			return
		}

		// A malformed frame is the client's mistake, not a reason to drop the page
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(errorMessage{Type: MsgError, Error: "invalid message: " + err.Error()})
			continue
		}
		h.handle(c, s, msg)
	}
}

func (h *PreviewHandler) handle(c *conn, s *session.Session, msg ClientMessage) {
	switch msg.Type {
	case MsgResize:
		if msg.Width == nil {
			return
		}
		s.Viewport().Resize(*msg.Width)
	case MsgEdit:
		snap, err := s.Apply(msg.EditRequest)
		if err != nil {
			c.send(errorMessage{Type: MsgError, Error: err.Error()})
			return
		}
		c.send(h.stateMessage(snap))
	default:
		c.send(errorMessage{Type: MsgError, Error: "unknown message type " + msg.Type})
	}
}

// conn serializes writes; gorilla connections allow one concurrent writer
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(v); err != nil {
		log.Printf("[Preview] Write error: %v", err)
	}
}

func scaleResponse(t preview.Transform) models.ScaleResponse {
	return models.ScaleResponse{Scale: t.Scale, Transform: t.CSS(), Origin: t.Origin}
}

func (h *PreviewHandler) stateMessage(snap session.Snapshot) stateMessage {
	return stateMessage{
		Type: MsgState,
		TotalsResponse: models.TotalsResponse{
			Revision: snap.Revision,
			State:    snap.State,
			Totals:   snap.Totals,
		},
		Display: displayTotals{
			Subtotal: h.formatter.Currency(snap.Totals.Subtotal),
			Tax:      h.formatter.Currency(snap.Totals.Tax),
			Total:    h.formatter.Currency(snap.Totals.Total),
		},
	}
}

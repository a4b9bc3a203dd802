package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"solar_analyzer/internal/analysis"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Runner runs analyses on behalf of WebSocket clients. Implementations
// broadcast stage and report messages themselves.
type Runner interface {
	Analyze(ctx context.Context, override []byte) (*analysis.Report, error)
	Latest() (*analysis.Report, string, bool)
	Data() DataLoadedPayload
}

// Handler manages WebSocket connections and routes messages to the runner.
type Handler struct {
	hub    *Hub
	runner Runner
}

func NewHandler(hub *Hub, runner Runner) *Handler {
	return &Handler{hub: hub, runner: runner}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade")
		return
	}

	client := newClient(h.hub, conn)

	h.hub.Register(client)
	go client.writePump()

	// Send initial data:loaded message
	h.sendDataLoaded(client)

	// Send the latest report, if any
	h.sendLatest(client, false)

	// Read messages from client
	h.readPump(r.Context(), client)
}

func (h *Handler) readPump(ctx context.Context, c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("client", c.id).Msg("websocket read")
			}
			return
		}

		h.handleMessage(ctx, c, msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Warn().Err(err).Str("client", c.id).Msg("invalid message")
		return
	}

	switch env.Type {
	case TypeAnalysisRun:
		var p RunPayload
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				h.sendError(c, "invalid analysis:run payload: "+err.Error())
				return
			}
		}
		if _, err := h.runner.Analyze(ctx, p.Config); err != nil {
			log.Warn().Err(err).Str("client", c.id).Msg("analysis failed")
		}

	case TypeReportGet:
		h.sendLatest(c, true)

	default:
		log.Warn().Str("type", env.Type).Str("client", c.id).Msg("unknown message type")
	}
}

func (h *Handler) sendDataLoaded(c *Client) {
	msg, err := NewEnvelope(TypeDataLoaded, h.runner.Data())
	if err != nil {
		log.Error().Err(err).Msg("creating data:loaded message")
		return
	}
	c.sendTo(msg)
}

// sendLatest sends the cached report to one client. Without a report it
// sends an error only when asked explicitly.
func (h *Handler) sendLatest(c *Client, explicit bool) {
	report, runID, ok := h.runner.Latest()
	if !ok {
		if explicit {
			h.sendError(c, "no report yet")
		}
		return
	}
	msg, err := NewRunEnvelope(TypeReportReady, runID, report)
	if err != nil {
		log.Error().Err(err).Msg("creating report:ready message")
		return
	}
	c.sendTo(msg)
}

func (h *Handler) sendError(c *Client, message string) {
	msg, err := NewEnvelope(TypeReportError, ErrorPayload{Message: message})
	if err != nil {
		return
	}
	c.sendTo(msg)
}

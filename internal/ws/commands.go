package ws

import (
	"context"
	"encoding/json"
	"errors"

	"buildcare/internal/chatbot"
	"buildcare/internal/pubsub"
	"buildcare/internal/session"

	"go.uber.org/zap"
)

// CommandHandler handles WebSocket commands. Chat widgets drive the
// dialogue engine through chat.* operations; every resolved turn is also
// mirrored onto the session's chat channel so the admin dashboard can
// watch conversations live.
type CommandHandler struct {
	sessions *session.Store
	bus      *pubsub.Bus
	log      *zap.Logger
}

func NewCommandHandler(sessions *session.Store, bus *pubsub.Bus, log *zap.Logger) *CommandHandler {
	return &CommandHandler{
		sessions: sessions,
		bus:      bus,
		log:      log,
	}
}

// HandleCommand processes a WebSocket command
func (h *CommandHandler) HandleCommand(ctx context.Context, conn *Conn, cmd map[string]interface{}) {
	op, _ := cmd["op"].(string)
	data, _ := cmd["data"].(map[string]interface{})
	msgID, _ := cmd["id"].(string)

	switch op {
	case "chat.open":
		h.handleChatOpen(ctx, conn, msgID)
	case "chat.message":
		h.handleChatMessage(ctx, conn, msgID, data)
	case "chat.select":
		h.handleChatSelect(ctx, conn, msgID, data)
	case "chat.reset":
		h.handleChatReset(ctx, conn, msgID, data)
	case "chat.transcript":
		h.handleChatTranscript(ctx, conn, msgID, data)
	default:
		h.sendError(conn, msgID, "unknown_command", "Unknown command: "+op)
	}
}

func (h *CommandHandler) handleChatOpen(ctx context.Context, conn *Conn, msgID string) {
	sess := h.sessions.Open()

	// The widget listens on its own chat channel for mirrored events.
	h.hubSubscribe(conn, pubsub.ChatChannel(sess.ID))

	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": map[string]interface{}{
			"sessionId":  sess.ID,
			"transcript": sess.State.Transcript,
			"options":    h.sessions.MenuOptions(sess.State.ActiveMenu),
		},
	})
}

func (h *CommandHandler) handleChatMessage(ctx context.Context, conn *Conn, msgID string, data map[string]interface{}) {
	sessionID, _ := data["sessionId"].(string)
	text, _ := data["text"].(string)
	if sessionID == "" || text == "" {
		h.sendError(conn, msgID, "invalid_input", "sessionId and text required")
		return
	}

	h.resolveTurn(conn, msgID, sessionID, chatbot.Turn{Kind: chatbot.TurnFreeText, Text: text})
}

func (h *CommandHandler) handleChatSelect(ctx context.Context, conn *Conn, msgID string, data map[string]interface{}) {
	sessionID, _ := data["sessionId"].(string)
	optionID, _ := data["optionId"].(string)
	if sessionID == "" || optionID == "" {
		h.sendError(conn, msgID, "invalid_input", "sessionId and optionId required")
		return
	}

	h.resolveTurn(conn, msgID, sessionID, chatbot.Turn{Kind: chatbot.TurnMenuSelection, OptionID: optionID})
}

func (h *CommandHandler) resolveTurn(conn *Conn, msgID, sessionID string, turn chatbot.Turn) {
	sess, result, err := h.sessions.Resolve(sessionID, turn)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.sendError(conn, msgID, "not_found", "session expired or unknown")
			return
		}
		h.sendError(conn, msgID, "resolve_failed", err.Error())
		return
	}

	if h.bus != nil {
		_ = h.bus.PublishChat(sess.ID, map[string]interface{}{
			"type":      "chat.turn",
			"sessionId": sess.ID,
			"botText":   result.BotText,
		})
	}

	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": map[string]interface{}{
			"sessionId":       sess.ID,
			"botText":         result.BotText,
			"options":         result.Options,
			"menu":            string(result.Menu),
			"showServiceMenu": result.ShowServiceMenu,
		},
	})
}

func (h *CommandHandler) handleChatReset(ctx context.Context, conn *Conn, msgID string, data map[string]interface{}) {
	sessionID, _ := data["sessionId"].(string)
	if sessionID == "" {
		h.sendError(conn, msgID, "invalid_input", "sessionId required")
		return
	}

	sess, err := h.sessions.Reset(sessionID)
	if err != nil {
		h.sendError(conn, msgID, "not_found", "session expired or unknown")
		return
	}

	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": map[string]interface{}{
			"sessionId":  sess.ID,
			"transcript": sess.State.Transcript,
			"options":    h.sessions.MenuOptions(sess.State.ActiveMenu),
		},
	})
}

func (h *CommandHandler) handleChatTranscript(ctx context.Context, conn *Conn, msgID string, data map[string]interface{}) {
	sessionID, _ := data["sessionId"].(string)
	if sessionID == "" {
		h.sendError(conn, msgID, "invalid_input", "sessionId required")
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		h.sendError(conn, msgID, "not_found", "session expired or unknown")
		return
	}

	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": map[string]interface{}{
			"sessionId":  sess.ID,
			"transcript": sess.State.Transcript,
			"pending":    sess.State.Pending.String(),
			"options":    h.sessions.MenuOptions(sess.State.ActiveMenu),
		},
	})
}

func (h *CommandHandler) hubSubscribe(conn *Conn, channel string) {
	conn.hub.Subscribe(conn, channel)
}

func (h *CommandHandler) sendResponse(conn *Conn, msgID string, response map[string]interface{}) {
	if msgID != "" {
		response["id"] = msgID
	}
	msg, _ := json.Marshal(response)
	select {
	case conn.send <- msg:
	default:
		h.log.Warn("Failed to send response, channel full")
	}
}

func (h *CommandHandler) sendError(conn *Conn, msgID, code, message string) {
	err := map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	}
	if msgID != "" {
		err["id"] = msgID
	}
	msg, _ := json.Marshal(err)
	select {
	case conn.send <- msg:
	default:
		h.log.Warn("Failed to send error, channel full")
	}
}

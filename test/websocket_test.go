package test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buildcare/internal/api"
	"buildcare/internal/chatbot"
	"buildcare/internal/model"
	"buildcare/internal/session"
	"buildcare/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The chat widget path needs neither Postgres nor Redis: the engine is
// pure and sessions live in memory, so this runs against a bare hub.
func setupChatWSServer(t *testing.T) (*httptest.Server, func()) {
	logger, _ := zap.NewDevelopment()

	services := []model.Service{
		{Slug: "terrace-waterproofing", Title: "Terrace Waterproofing", Description: "Membrane and coating systems for flat roofs."},
		{Slug: "crack-repair", Title: "Crack Repair", Description: "Structural and non-structural crack treatment."},
	}
	engine, err := chatbot.NewDefault(chatbot.OrgConfig{
		Name:  "BuildCare Solutions",
		Phone: "+91 98422 11100",
		City:  "Madurai",
	}, services)
	require.NoError(t, err)

	sessions := session.NewStore(engine, 100, 5*time.Minute)

	hub := ws.NewHub(logger)
	hub.SetCommandHandler(ws.NewCommandHandler(sessions, nil, logger))
	go hub.Run()

	r := chi.NewRouter()
	r.Mount("/v1", api.Routes(api.Dependencies{
		Hub:      hub,
		Log:      logger,
		Sessions: sessions,
		JWT:      testJWTConfig(),
	}))

	server := httptest.NewServer(r)
	return server, server.Close
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func sendCmd(t *testing.T, conn *websocket.Conn, id, op string, data map[string]interface{}) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "cmd",
		"id":   id,
		"op":   op,
		"data": data,
	}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestWebSocketChatFlow(t *testing.T) {
	server, cleanup := setupChatWSServer(t)
	defer cleanup()

	conn := dialWS(t, server)
	defer conn.Close()

	// Open a session
	msg := sendCmd(t, conn, "1", "chat.open", nil)
	require.Equal(t, "response", msg["type"])
	data := msg["data"].(map[string]interface{})
	sessionID, _ := data["sessionId"].(string)
	require.NotEmpty(t, sessionID)
	require.NotEmpty(t, data["transcript"])

	// Free text turn
	msg = sendCmd(t, conn, "2", "chat.message", map[string]interface{}{
		"sessionId": sessionID,
		"text":      "I want to book an inspection",
	})
	require.Equal(t, "response", msg["type"])
	data = msg["data"].(map[string]interface{})
	assert.NotEmpty(t, data["botText"])

	// Menu click
	msg = sendCmd(t, conn, "3", "chat.select", map[string]interface{}{
		"sessionId": sessionID,
		"optionId":  "services",
	})
	require.Equal(t, "response", msg["type"])
	data = msg["data"].(map[string]interface{})
	assert.Equal(t, true, data["showServiceMenu"])

	// Reset brings the session back to the greeting
	msg = sendCmd(t, conn, "4", "chat.reset", map[string]interface{}{
		"sessionId": sessionID,
	})
	require.Equal(t, "response", msg["type"])
	data = msg["data"].(map[string]interface{})
	transcript, ok := data["transcript"].([]interface{})
	require.True(t, ok)
	assert.Len(t, transcript, 1)
}

func TestWebSocketChatErrors(t *testing.T) {
	server, cleanup := setupChatWSServer(t)
	defer cleanup()

	conn := dialWS(t, server)
	defer conn.Close()

	// Unknown session
	msg := sendCmd(t, conn, "1", "chat.message", map[string]interface{}{
		"sessionId": "nope",
		"text":      "hello",
	})
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "not_found", msg["code"])

	// Missing fields
	msg = sendCmd(t, conn, "2", "chat.message", map[string]interface{}{})
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "invalid_input", msg["code"])

	// Unknown op
	msg = sendCmd(t, conn, "3", "chat.teleport", nil)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "unknown_command", msg["code"])
}

func TestWebSocketSubscribeAck(t *testing.T) {
	server, cleanup := setupChatWSServer(t)
	defer cleanup()

	conn := dialWS(t, server)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "subscribe",
		"channel": "leads:inquiry",
	}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ack map[string]interface{}
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "ack", ack["type"])
	assert.Equal(t, "subscribed", ack["ack"])
	assert.Equal(t, "leads:inquiry", ack["channel"])
}

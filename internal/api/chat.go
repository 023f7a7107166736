package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"buildcare/internal/chatbot"
	"buildcare/internal/session"

	"github.com/go-chi/chi/v5"
)

type chatSessionResponse struct {
	SessionID  string            `json:"sessionId"`
	Transcript []chatbot.Message `json:"transcript"`
	Pending    string            `json:"pending"`
	Options    []chatbot.Option  `json:"options"`
}

type chatTurnResponse struct {
	SessionID       string           `json:"sessionId"`
	BotText         string           `json:"botText"`
	Options         []chatbot.Option `json:"options"`
	Menu            string           `json:"menu"`
	ShowServiceMenu bool             `json:"showServiceMenu"`
}

func (d Dependencies) openChatSession(w http.ResponseWriter, r *http.Request) {
	sess := d.Sessions.Open()

	WriteJSON(w, http.StatusCreated, chatSessionResponse{
		SessionID:  sess.ID,
		Transcript: sess.State.Transcript,
		Pending:    sess.State.Pending.String(),
		Options:    d.Sessions.MenuOptions(sess.State.ActiveMenu),
	})
}

func (d Dependencies) getChatSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := d.Sessions.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "not_found", "Session expired or unknown", d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, chatSessionResponse{
		SessionID:  sess.ID,
		Transcript: sess.State.Transcript,
		Pending:    sess.State.Pending.String(),
		Options:    d.Sessions.MenuOptions(sess.State.ActiveMenu),
	})
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

func (d Dependencies) postChatMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "text required", d.Log)
		return
	}

	d.resolveChatTurn(w, id, chatbot.Turn{Kind: chatbot.TurnFreeText, Text: req.Text})
}

type chatSelectRequest struct {
	OptionID string `json:"optionId"`
}

func (d Dependencies) selectChatOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req chatSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionID == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "optionId required", d.Log)
		return
	}

	d.resolveChatTurn(w, id, chatbot.Turn{Kind: chatbot.TurnMenuSelection, OptionID: req.OptionID})
}

func (d Dependencies) resolveChatTurn(w http.ResponseWriter, id string, turn chatbot.Turn) {
	sess, result, err := d.Sessions.Resolve(id, turn)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not_found", "Session expired or unknown", d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "resolve_failed", err.Error(), d.Log)
		return
	}

	if d.Bus != nil {
		_ = d.Bus.PublishChat(sess.ID, map[string]interface{}{
			"type":      "chat.turn",
			"sessionId": sess.ID,
			"botText":   result.BotText,
		})
	}

	WriteJSON(w, http.StatusOK, chatTurnResponse{
		SessionID:       sess.ID,
		BotText:         result.BotText,
		Options:         result.Options,
		Menu:            string(result.Menu),
		ShowServiceMenu: result.ShowServiceMenu,
	})
}

func (d Dependencies) resetChatSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := d.Sessions.Reset(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "not_found", "Session expired or unknown", d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, chatSessionResponse{
		SessionID:  sess.ID,
		Transcript: sess.State.Transcript,
		Pending:    sess.State.Pending.String(),
		Options:    d.Sessions.MenuOptions(sess.State.ActiveMenu),
	})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"buildcare/internal/db"
	"buildcare/internal/forms"
	"buildcare/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// parseLeadKind maps the URL path segment to a lead kind.
func parseLeadKind(segment string) (model.LeadKind, bool) {
	switch segment {
	case "inquiries":
		return model.LeadKindInquiry, true
	case "contacts":
		return model.LeadKindContact, true
	case "exit-intents":
		return model.LeadKindExitIntent, true
	}
	return "", false
}

func (d Dependencies) submitInquiry(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	inquiry, err := d.Leads.SubmitInquiry(r.Context(), payload)
	if err != nil {
		if errors.Is(err, forms.ErrInvalidSubmission) {
			WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "submit_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusCreated, inquiry)
}

func (d Dependencies) submitContact(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	contact, err := d.Leads.SubmitContact(r.Context(), payload)
	if err != nil {
		if errors.Is(err, forms.ErrInvalidSubmission) {
			WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "submit_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusCreated, contact)
}

func (d Dependencies) submitExitIntent(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	exitIntent, err := d.Leads.SubmitExitIntent(r.Context(), payload)
	if err != nil {
		if errors.Is(err, forms.ErrInvalidSubmission) {
			WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "submit_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusCreated, exitIntent)
}

func (d Dependencies) listLeads(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseLeadKind(chi.URLParam(r, "kind"))
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown_kind", "Unknown lead kind", d.Log)
		return
	}

	params := listParamsFromQuery(r)

	var items interface{}
	var err error
	switch kind {
	case model.LeadKindInquiry:
		items, err = d.Leads.ListInquiries(r.Context(), params)
	case model.LeadKindContact:
		items, err = d.Leads.ListContacts(r.Context(), params)
	case model.LeadKindExitIntent:
		items, err = d.Leads.ListExitIntents(r.Context(), params)
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "list_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func listParamsFromQuery(r *http.Request) db.ListLeadsParams {
	params := db.ListLeadsParams{
		IncludeDeleted: r.URL.Query().Get("includeDeleted") == "true",
		SortBy:         r.URL.Query().Get("sortBy"),
		Limit:          50,
		Offset:         0,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		params.Status = &status
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			params.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	return params
}

func (d Dependencies) markLeadRead(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseLeadKind(chi.URLParam(r, "kind"))
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown_kind", "Unknown lead kind", d.Log)
		return
	}
	id := chi.URLParam(r, "id")

	if err := d.Leads.MarkRead(r.Context(), kind, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "not_found", "Lead not found", d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "update_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

type SnoozeRequest struct {
	RemindAt time.Time `json:"remindAt"`
}

func (d Dependencies) snoozeLead(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseLeadKind(chi.URLParam(r, "kind"))
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown_kind", "Unknown lead kind", d.Log)
		return
	}
	id := chi.URLParam(r, "id")

	var req SnoozeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.RemindAt.IsZero() {
		WriteError(w, http.StatusBadRequest, "invalid_request", "remindAt required", d.Log)
		return
	}

	if err := d.Leads.Snooze(r.Context(), kind, id, req.RemindAt); err != nil {
		WriteError(w, http.StatusInternalServerError, "snooze_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "snoozed",
		"remindAt": req.RemindAt.Format(time.RFC3339),
	})
}

func (d Dependencies) deleteLead(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseLeadKind(chi.URLParam(r, "kind"))
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown_kind", "Unknown lead kind", d.Log)
		return
	}
	id := chi.URLParam(r, "id")

	if err := d.Leads.SoftDelete(r.Context(), kind, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "not_found", "Lead not found", d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "delete_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

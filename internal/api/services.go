package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"buildcare/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

func (d Dependencies) listServices(w http.ResponseWriter, r *http.Request) {
	services, err := d.Catalog.ListServices(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "list_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": services})
}

func (d Dependencies) getService(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	svc, err := d.Catalog.GetService(r.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "not_found", "Service not found", d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "get_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, svc)
}

type UpsertServiceRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	SortOrder   int      `json:"sortOrder"`
}

func (d Dependencies) upsertService(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req UpsertServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.Title == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "title required", d.Log)
		return
	}

	svc, err := d.Catalog.UpsertService(r.Context(), model.Service{
		Slug:        slug,
		Title:       req.Title,
		Description: req.Description,
		Features:    req.Features,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "upsert_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, svc)
}

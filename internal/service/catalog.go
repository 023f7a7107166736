package service

import (
	"context"
	"fmt"
	"time"

	"buildcare/internal/db"
	"buildcare/internal/model"
)

type CatalogService struct {
	queries *db.Queries
}

func NewCatalogService(queries *db.Queries) *CatalogService {
	return &CatalogService{queries: queries}
}

// ListServices returns the full catalog in display order.
func (s *CatalogService) ListServices(ctx context.Context) ([]model.Service, error) {
	items, err := s.queries.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	out := make([]model.Service, 0, len(items))
	for _, item := range items {
		out = append(out, dbServiceToModel(item))
	}
	return out, nil
}

// GetService returns one service by slug.
func (s *CatalogService) GetService(ctx context.Context, slug string) (*model.Service, error) {
	item, err := s.queries.GetServiceBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("service not found: %w", err)
	}
	svc := dbServiceToModel(item)
	return &svc, nil
}

// UpsertService creates or updates a catalog entry.
func (s *CatalogService) UpsertService(ctx context.Context, svc model.Service) (*model.Service, error) {
	if svc.Slug == "" || svc.Title == "" {
		return nil, fmt.Errorf("slug and title are required")
	}
	item, err := s.queries.UpsertService(ctx, svc.Slug, svc.Title, svc.Description, svc.Features, svc.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert service: %w", err)
	}
	saved := dbServiceToModel(item)
	return &saved, nil
}

// SeedDefaults inserts the default catalog when the table is empty, so a
// fresh deployment has a service menu for the chat widget.
func (s *CatalogService) SeedDefaults(ctx context.Context) error {
	count, err := s.queries.CountServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to count services: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, svc := range defaultCatalog {
		if _, err := s.queries.UpsertService(ctx, svc.Slug, svc.Title, svc.Description, svc.Features, i); err != nil {
			return fmt.Errorf("failed to seed service %s: %w", svc.Slug, err)
		}
	}
	return nil
}

var defaultCatalog = []model.Service{
	{
		Slug:        "terrace-waterproofing",
		Title:       "Terrace Waterproofing",
		Description: "Complete terrace waterproofing with crack grouting, screed correction and a UV-stable membrane system that keeps the slab dry through heavy monsoons.",
		Features:    []string{"Free moisture survey", "5-year written warranty", "Monsoon-ready membranes"},
	},
	{
		Slug:        "bathroom-leakage",
		Title:       "Bathroom Leakage Treatment",
		Description: "Sunken-slab and tile-joint treatment that stops leakage to the flat below without breaking all the existing tiling.",
		Features:    []string{"Minimal tile removal", "Same-week completion", "Odourless chemicals"},
	},
	{
		Slug:        "crack-repair",
		Title:       "Crack Repair & Grouting",
		Description: "Structural and non-structural crack repair using pressure grouting, mesh reinforcement and polymer-modified finishing.",
		Features:    []string{"Engineer-classified cracks", "Colour-matched finish", "Pressure grouting"},
	},
	{
		Slug:        "structural-rehab",
		Title:       "Structural Rehabilitation",
		Description: "Restoration of corroded columns, beams and slabs with rebar treatment, micro-concrete jacketing and load testing where required.",
		Features:    []string{"Engineer assessment", "Jacketing and micro-concrete", "10-year warranty"},
	},
	{
		Slug:        "expansion-joints",
		Title:       "Expansion Joint Treatment",
		Description: "Rebuilding failed expansion joints with backer rod and polysulphide or PU sealants rated for structural movement.",
		Features:    []string{"Movement-rated sealants", "Water-tight detailing"},
	},
}

func dbServiceToModel(s db.Service) model.Service {
	return model.Service{
		Slug:        s.Slug,
		Title:       s.Title,
		Description: s.Description,
		Features:    s.Features,
		SortOrder:   s.SortOrder,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

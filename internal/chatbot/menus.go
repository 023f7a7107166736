package chatbot

import (
	"errors"
	"fmt"

	"buildcare/internal/model"
)

// ErrUnknownMenu is returned when a rule references a menu that was never
// defined. Construction-time only.
var ErrUnknownMenu = errors.New("chatbot: unknown menu")

// MenuID names a quick-reply menu.
type MenuID string

const (
	MenuNone            MenuID = ""
	MenuMain            MenuID = "main"
	MenuAppointment     MenuID = "appointment"
	MenuTimeSlots       MenuID = "time_slots"
	MenuPricing         MenuID = "pricing"
	MenuProblems        MenuID = "problems"
	MenuMaintenance     MenuID = "maintenance"
	MenuServices        MenuID = "services"
	MenuServiceFollowup MenuID = "service_followup"
)

// Option is one clickable quick reply.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Menus holds the named, ordered quick-reply menus. Static configuration,
// built once and never mutated.
type Menus struct {
	byName map[MenuID][]Option
}

// NewMenus builds the fixed menus plus the service menu derived from the
// catalog snapshot taken at construction time. The service menu does not
// track later catalog changes.
func NewMenus(services []model.Service) *Menus {
	serviceMenu := make([]Option, 0, len(services))
	for _, s := range services {
		serviceMenu = append(serviceMenu, Option{ID: s.Slug, Label: s.Title})
	}

	return &Menus{byName: map[MenuID][]Option{
		MenuMain: {
			{ID: "services", Label: "Our services"},
			{ID: "problems", Label: "Common problems"},
			{ID: "appointment", Label: "Book an inspection"},
			{ID: "pricing", Label: "Pricing"},
			{ID: "contact", Label: "Contact us"},
		},
		MenuAppointment: {
			{ID: "appointment_emergency", Label: "It's an emergency"},
			{ID: "appointment_timing", Label: "How soon can you come?"},
			{ID: "call_now", Label: "Call us instead"},
		},
		MenuTimeSlots: {
			{ID: "slot_morning", Label: "Morning (9AM-12PM)"},
			{ID: "slot_afternoon", Label: "Afternoon (12PM-4PM)"},
			{ID: "slot_evening", Label: "Evening (4PM-7PM)"},
		},
		MenuPricing: {
			{ID: "pricing_range", Label: "Typical price range"},
			{ID: "pricing_payment", Label: "Payment options"},
			{ID: "pricing_discount", Label: "Offers & discounts"},
		},
		MenuProblems: {
			{ID: "waterproofing", Label: "Leaks & waterproofing"},
			{ID: "cracks", Label: "Wall & ceiling cracks"},
			{ID: "seepage", Label: "Seepage & damp patches"},
			{ID: "structural", Label: "Structural damage"},
			{ID: "expansion_joints", Label: "Expansion joints"},
		},
		MenuMaintenance: {
			{ID: "maintenance", Label: "Maintenance tips"},
			{ID: "pre_repair", Label: "Before a repair"},
			{ID: "post_repair", Label: "After a repair"},
		},
		MenuServiceFollowup: {
			{ID: "slot_morning", Label: "Morning (9AM-12PM)"},
			{ID: "slot_evening", Label: "Evening (4PM-7PM)"},
			{ID: "maintenance", Label: "Maintenance tips"},
		},
		MenuServices: serviceMenu,
	}}
}

// Get returns the ordered options of a named menu.
func (m *Menus) Get(name MenuID) ([]Option, error) {
	if name == MenuNone {
		return nil, nil
	}
	options, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMenu, name)
	}
	return options, nil
}

// Has reports whether a menu is defined.
func (m *Menus) Has(name MenuID) bool {
	if name == MenuNone {
		return true
	}
	_, ok := m.byName[name]
	return ok
}

// Label resolves an option id to its label by scanning the fixed menus.
// Falls back to the id itself for dynamic (service) options.
func (m *Menus) Label(optionID string) string {
	for _, options := range m.byName {
		for _, o := range options {
			if o.ID == optionID {
				return o.Label
			}
		}
	}
	return optionID
}

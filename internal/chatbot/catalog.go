package chatbot

import (
	"errors"
	"fmt"
)

// ErrUnknownKey is returned when a response key is absent from the catalog.
// It can only surface during engine construction; a validated engine never
// hits it at resolve time.
var ErrUnknownKey = errors.New("chatbot: unknown response key")

// OrgConfig carries the franchise details interpolated into canned text
// at catalog construction time.
type OrgConfig struct {
	Name  string
	Phone string
	City  string
}

// Catalog is the immutable mapping of response keys to canned text.
type Catalog struct {
	responses map[string]string
}

// NewCatalog builds the default response catalog for an organization.
func NewCatalog(org OrgConfig) *Catalog {
	r := map[string]string{
		"greeting":          fmt.Sprintf("Hello! Welcome to %s. I'm here to help with any building repair questions.", org.Name),
		"greeting_followup": "You can ask me about our services, pricing, booking an inspection, or describe the problem you're seeing.",

		"services_list": fmt.Sprintf("%s handles waterproofing, crack repair, seepage treatment, expansion joints and structural strengthening. Pick a service below to learn more.", org.Name),
		"about":         fmt.Sprintf("%s has been repairing and restoring buildings in %s for over 15 years, with trained applicators and engineer-supervised work.", org.Name, org.City),
		"contact":       fmt.Sprintf("You can reach us at %s, or leave your details in the contact form and we'll call you back within a working day.", org.Phone),
		"location":      fmt.Sprintf("We're based in %s and cover the surrounding districts. Site visits anywhere in the city are free.", org.City),
		"process":       "Our process: a free site inspection, then a written diagnosis and quote, then scheduled repair work with a supervisor on site, and a final quality check.",
		"warranty":      "All major repair work carries a written warranty, typically 5 years for waterproofing and 10 years for structural work.",
		"quality":       "Every job is supervised by a qualified engineer and we photograph each stage so you can verify the work done.",
		"materials":     "We only use ISI-certified repair chemicals and membranes from established brands, matched to your specific problem during inspection.",

		"appointment":           fmt.Sprintf("Happy to arrange a free inspection. Please share a phone number we can reach you on, or call us directly at %s.", org.Phone),
		"appointment_emergency": fmt.Sprintf("For urgent problems like active leaks, call us right away at %s. We keep a crew on standby for emergencies.", org.Phone),
		"appointment_timing":    "We can usually schedule an inspection within 24 to 48 hours of your request.",
		"appointment_followup":  "Got it, thanks! When would suit you for the visit?",
		"appointment_confirmed": "Your inspection request is noted. Our coordinator will call you shortly to confirm the visit. Anything else I can help with?",
		"phone_clarify":         "I didn't catch a phone number there. Could you type the number we should call you on?",

		"pricing":          "Pricing depends on the affected area and the repair method, which is why the inspection is free. I can give you rough ranges if that helps.",
		"pricing_range":    "As a rough guide: terrace waterproofing runs per square foot, crack repair is priced per running foot, and structural work is quoted after inspection.",
		"pricing_payment":  "We accept bank transfer, UPI and cards, with stage-wise payment on larger jobs.",
		"pricing_discount": "Seasonal offers do come up, especially before monsoon. Mention this chat during your inspection and we'll apply any running offer.",

		"problems": "Building problems usually show up as leaks, cracks, damp patches or peeling paint. Pick the one closest to what you're seeing.",

		"waterproofing":          "Waterproofing failures are the most common cause of building damage. We treat terraces, bathrooms, side walls and sumps with membrane and coating systems.",
		"waterproofing_terrace":  "Terrace leaks usually need the old treatment stripped, cracks grouted, and a new membrane laid. Done right, it stays dry for years.",
		"waterproofing_bathroom": "Bathroom leakage often travels to the flat below. We re-treat the sunken slab and tile joints without breaking all the tiling.",
		"waterproofing_wall":     "Exterior wall waterproofing uses breathable coatings that block rain while letting trapped moisture escape.",

		"cracks":         "Cracks fall into surface cracks, settlement cracks and structural cracks. A quick inspection tells us which one you have.",
		"cracks_wall":    "Wall cracks are usually plaster shrinkage or settlement. We grout, mesh and refinish them so they don't reopen.",
		"cracks_ceiling": "Ceiling or slab cracks deserve prompt attention since they can indicate rebar corrosion. We inspect these within a day or two.",

		"seepage":         "Seepage means water is finding a path through the structure. We trace the source rather than just repainting over the damp.",
		"seepage_wall":    "Wall seepage typically enters through external cracks or joints. Sealing the entry point fixes it permanently.",
		"seepage_ceiling": "Ceiling seepage comes from the floor above or the terrace. We locate the source with a moisture survey before any repair.",

		"expansion_joints": "Failed expansion joints let water straight into the structure. We rebuild them with backer rod and polysulphide or PU sealant.",

		"structural":         "Structural repair covers weakened columns, beams and slabs. Every structural job starts with an engineer's assessment.",
		"structural_columns": "Corroded or cracked columns are restored by removing loose concrete, treating the rebar and rebuilding with polymer-modified mortar or jacketing.",

		"stains_damp":  "Water stains with dampness mean moisture is still moving through the wall. The stain is the symptom; we fix the source first.",
		"paint_peeling": "Peeling or bubbling paint is almost always trapped moisture. Repainting won't hold until the dampness behind it is treated.",

		"maintenance": "Simple upkeep goes a long way: keep terrace drains clear, recoat exposed surfaces every few years, and address small cracks before monsoon.",
		"pre_repair":  "Before we arrive, just clear access to the affected area. We handle masking, protection and cleanup ourselves.",
		"post_repair": "After a repair, allow the recommended curing time before heavy use, and keep the area ventilated. We'll leave written aftercare notes.",

		"gratitude": "You're welcome! Glad I could help.",
		"goodbye":   fmt.Sprintf("Thanks for chatting with %s. Have a great day!", org.Name),

		"default": "I'm not sure I understand. You can pick one of the options below, or describe the problem you're seeing in your building.",
	}
	return &Catalog{responses: r}
}

// Get returns the canned text for a key.
func (c *Catalog) Get(key string) (string, error) {
	text, ok := c.responses[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return text, nil
}

// Has reports whether a key exists in the catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.responses[key]
	return ok
}

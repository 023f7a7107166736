package chatbot

// Rule is one entry of the ordered intent table for free-text input.
// Every group must be satisfied by at least one of its keywords; rules are
// evaluated in declaration order and the first match wins, so more specific
// rules sit above the generic ones they overlap with.
type Rule struct {
	Key     string
	Groups  [][]string
	Menu    MenuID
	Context Context
	// ShowServices tells the UI to render the service-catalog menu.
	ShowServices bool
}

// OptionRule is the outcome of clicking a fixed quick-reply option. The
// option table shares response keys and menu names with the free-text rules
// so the two entry points cannot drift apart.
type OptionRule struct {
	Key          string
	Menu         MenuID
	Context      Context
	ShowServices bool
}

var appointmentWords = []string{"appointment", "schedule", "book", "booking", "inspection", "site visit"}
var pricingWords = []string{"price", "prices", "pricing", "cost", "costs", "charges", "rate", "rates", "quote", "quotation"}

// DefaultRules returns the intent table in its fixed evaluation order.
// The appointment rules sit above every problem-category rule, so text like
// "I have a leaking roof and need to schedule an appointment" books the
// appointment rather than answering about roof leaks.
func DefaultRules() []Rule {
	return []Rule{
		{Key: "greeting", Groups: [][]string{{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "vanakkam", "namaste"}}, Menu: MenuMain},

		{Key: "services_list", Groups: [][]string{{"services", "service", "offerings", "what do you do", "what you offer"}}, Menu: MenuServices, ShowServices: true},
		{Key: "about", Groups: [][]string{{"about", "experience", "expertise", "who are you", "how long have you"}}, Menu: MenuMain},
		{Key: "contact", Groups: [][]string{{"contact", "reach you", "call you", "phone number", "email"}}, Menu: MenuMain},

		{Key: "appointment_emergency", Groups: [][]string{appointmentWords, {"emergency", "urgent", "urgently", "immediately", "asap"}}, Menu: MenuMain},
		{Key: "appointment_timing", Groups: [][]string{appointmentWords, {"how soon", "how long", "when can", "timing"}}, Menu: MenuAppointment},
		{Key: "appointment", Groups: [][]string{appointmentWords}, Menu: MenuAppointment, Context: ContextAwaitingPhone},

		{Key: "pricing_range", Groups: [][]string{pricingWords, {"range", "how much", "approx", "approximate", "estimate"}}, Menu: MenuPricing},
		{Key: "pricing_payment", Groups: [][]string{{"payment", "payments", "emi", "installment", "installments", "upi"}}, Menu: MenuPricing},
		{Key: "pricing_discount", Groups: [][]string{{"discount", "discounts", "offer", "offers", "concession"}}, Menu: MenuPricing},
		{Key: "pricing", Groups: [][]string{pricingWords}, Menu: MenuPricing},

		{Key: "location", Groups: [][]string{{"location", "located", "address", "where are you", "which area", "which city"}}, Menu: MenuMain},
		{Key: "process", Groups: [][]string{{"process", "procedure", "steps", "how do you work", "methodology"}}, Menu: MenuMain},
		{Key: "warranty", Groups: [][]string{{"warranty", "guarantee", "assurance"}}, Menu: MenuMain},
		{Key: "quality", Groups: [][]string{{"quality", "standard", "standards", "certified", "certification"}}, Menu: MenuMain},
		{Key: "materials", Groups: [][]string{{"material", "materials", "brand", "brands", "chemicals"}}, Menu: MenuMain},

		// Problem categories: specific sub-types above their generic parent.
		{Key: "waterproofing_terrace", Groups: [][]string{{"terrace", "roof", "rooftop"}, {"waterproof", "waterproofing", "leak", "leaks", "leaking", "leakage"}}, Menu: MenuAppointment},
		{Key: "waterproofing_bathroom", Groups: [][]string{{"bathroom", "toilet", "washroom"}, {"waterproof", "leak", "leaking", "leakage", "seepage", "damp"}}, Menu: MenuAppointment},
		{Key: "waterproofing_wall", Groups: [][]string{{"wall", "walls"}, {"waterproof", "waterproofing"}}, Menu: MenuAppointment},
		{Key: "waterproofing", Groups: [][]string{{"waterproof", "waterproofing"}}, Menu: MenuProblems},

		{Key: "cracks_wall", Groups: [][]string{{"crack", "cracks", "cracked"}, {"wall", "walls", "plaster"}}, Menu: MenuAppointment},
		{Key: "cracks_ceiling", Groups: [][]string{{"crack", "cracks", "cracked"}, {"ceiling", "slab", "roof"}}, Menu: MenuAppointment},
		{Key: "cracks", Groups: [][]string{{"crack", "cracks", "cracked", "hairline"}}, Menu: MenuProblems},

		{Key: "seepage_wall", Groups: [][]string{{"seepage", "seeping", "damp", "dampness"}, {"wall", "walls"}}, Menu: MenuAppointment},
		{Key: "seepage_ceiling", Groups: [][]string{{"seepage", "seeping", "damp", "dampness"}, {"ceiling", "slab"}}, Menu: MenuAppointment},
		{Key: "seepage", Groups: [][]string{{"seepage", "seeping", "moisture", "damp", "dampness"}}, Menu: MenuProblems},

		{Key: "expansion_joints", Groups: [][]string{{"expansion joint", "expansion joints", "joint", "joints"}}, Menu: MenuAppointment},

		{Key: "structural_columns", Groups: [][]string{{"structural", "structure", "beam", "beams", "column", "columns", "pillar"}, {"repair", "damage", "damaged", "weak", "corrosion", "rebar"}}, Menu: MenuAppointment},
		{Key: "structural", Groups: [][]string{{"structural", "load bearing", "foundation"}}, Menu: MenuProblems},

		// Visible-symptom rules require both a symptom group and a moisture
		// group so plain mentions of "water" alone don't trigger them.
		{Key: "stains_damp", Groups: [][]string{{"stain", "stains", "patch", "patches", "discoloration", "discolouration"}, {"water", "damp", "moist", "wet"}}, Menu: MenuAppointment},
		{Key: "paint_peeling", Groups: [][]string{{"paint", "plaster"}, {"peel", "peeling", "flaking", "bubbling"}}, Menu: MenuAppointment},

		{Key: "maintenance", Groups: [][]string{{"maintenance", "maintain", "prevention", "prevent", "upkeep", "tips"}}, Menu: MenuMaintenance},
		{Key: "pre_repair", Groups: [][]string{{"before repair", "before the repair", "prepare", "preparation"}}, Menu: MenuMaintenance},
		{Key: "post_repair", Groups: [][]string{{"after repair", "after the repair", "aftercare", "curing"}}, Menu: MenuMaintenance},

		{Key: "gratitude", Groups: [][]string{{"thank", "thanks"}}, Menu: MenuMain},
		{Key: "goodbye", Groups: [][]string{{"bye", "goodbye", "see you", "good night"}}, Menu: MenuMain},
	}
}

// DefaultOptions returns the fixed option table for quick-reply clicks.
// Ids not present here are treated as service-catalog slugs by the engine.
func DefaultOptions() map[string]OptionRule {
	return map[string]OptionRule{
		"services":    {Key: "services_list", Menu: MenuServices, ShowServices: true},
		"problems":    {Key: "problems", Menu: MenuProblems},
		"appointment": {Key: "appointment", Menu: MenuAppointment, Context: ContextAwaitingPhone},
		"pricing":     {Key: "pricing", Menu: MenuPricing},
		"contact":     {Key: "contact", Menu: MenuMain},
		"about":       {Key: "about", Menu: MenuMain},
		"call_now":    {Key: "contact", Menu: MenuMain},

		"appointment_emergency": {Key: "appointment_emergency", Menu: MenuMain},
		"appointment_timing":    {Key: "appointment_timing", Menu: MenuAppointment},

		"slot_morning":   {Key: "appointment_confirmed", Menu: MenuProblems},
		"slot_afternoon": {Key: "appointment_confirmed", Menu: MenuProblems},
		"slot_evening":   {Key: "appointment_confirmed", Menu: MenuProblems},

		"waterproofing":    {Key: "waterproofing", Menu: MenuProblems},
		"cracks":           {Key: "cracks", Menu: MenuProblems},
		"seepage":          {Key: "seepage", Menu: MenuProblems},
		"structural":       {Key: "structural", Menu: MenuProblems},
		"expansion_joints": {Key: "expansion_joints", Menu: MenuAppointment},

		"pricing_range":    {Key: "pricing_range", Menu: MenuPricing},
		"pricing_payment":  {Key: "pricing_payment", Menu: MenuPricing},
		"pricing_discount": {Key: "pricing_discount", Menu: MenuPricing},

		"maintenance": {Key: "maintenance", Menu: MenuMaintenance},
		"pre_repair":  {Key: "pre_repair", Menu: MenuMaintenance},
		"post_repair": {Key: "post_repair", Menu: MenuMaintenance},
	}
}

package model

// LeadStatus represents the admin workflow state of a captured lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusResolved  LeadStatus = "RESOLVED"
	LeadStatusStale     LeadStatus = "STALE"
)

// LeadKind identifies which capture form produced a lead
type LeadKind string

const (
	LeadKindInquiry    LeadKind = "inquiry"
	LeadKindContact    LeadKind = "contact"
	LeadKindExitIntent LeadKind = "exit_intent"
)

// Service represents one entry of the repair-service catalog
type Service struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features,omitempty"`
	SortOrder   int      `json:"sortOrder,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// Inquiry represents a repair inquiry submitted from the site
type Inquiry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	ServiceSlug string     `json:"serviceSlug,omitempty"`
	Message     string     `json:"message,omitempty"`
	Status      LeadStatus `json:"status"`
	SourcePage  string     `json:"sourcePage,omitempty"`
	ReadAt      *string    `json:"readAt,omitempty"`
	CreatedAt   string     `json:"createdAt,omitempty"`
}

// Contact represents a general contact-form submission
type Contact struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Message   string     `json:"message"`
	Status    LeadStatus `json:"status"`
	ReadAt    *string    `json:"readAt,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
}

// ExitIntent represents an exit-intent popup capture
type ExitIntent struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Offer      string     `json:"offer,omitempty"`
	SourcePage string     `json:"sourcePage,omitempty"`
	Status     LeadStatus `json:"status"`
	ReadAt     *string    `json:"readAt,omitempty"`
	CreatedAt  string     `json:"createdAt,omitempty"`
}

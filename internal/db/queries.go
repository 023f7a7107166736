package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries wraps database queries
type Queries struct {
	*pgxpool.Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{Pool: pool}
}

// Service represents a service catalog row
type Service struct {
	Slug        string
	Title       string
	Description string
	Features    []string
	SortOrder   int
	CreatedAt   time.Time
}

func (q *Queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.Pool.Query(ctx,
		"SELECT slug, title, description, features, sort_order, created_at FROM services ORDER BY sort_order, title",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.Slug, &s.Title, &s.Description, &s.Features, &s.SortOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (q *Queries) GetServiceBySlug(ctx context.Context, slug string) (Service, error) {
	var s Service
	err := q.Pool.QueryRow(ctx,
		"SELECT slug, title, description, features, sort_order, created_at FROM services WHERE slug = $1",
		slug,
	).Scan(&s.Slug, &s.Title, &s.Description, &s.Features, &s.SortOrder, &s.CreatedAt)
	return s, err
}

func (q *Queries) UpsertService(ctx context.Context, slug, title, description string, features []string, sortOrder int) (Service, error) {
	var s Service
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO services (slug, title, description, features, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			features = EXCLUDED.features,
			sort_order = EXCLUDED.sort_order
		RETURNING slug, title, description, features, sort_order, created_at`,
		slug, title, description, features, sortOrder,
	).Scan(&s.Slug, &s.Title, &s.Description, &s.Features, &s.SortOrder, &s.CreatedAt)
	return s, err
}

func (q *Queries) CountServices(ctx context.Context) (int, error) {
	var count int
	err := q.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM services").Scan(&count)
	return count, err
}

// Inquiry represents an inquiry lead row
type Inquiry struct {
	ID          string
	Name        string
	Phone       string
	Email       *string
	ServiceSlug *string
	Message     *string
	Status      string
	SourcePage  *string
	ReadAt      *time.Time
	DeletedAt   *time.Time
	CreatedAt   time.Time
}

type CreateInquiryParams struct {
	ID          string
	Name        string
	Phone       string
	Email       *string
	ServiceSlug *string
	Message     *string
	Status      string
	SourcePage  *string
}

func (q *Queries) CreateInquiry(ctx context.Context, p CreateInquiryParams) (Inquiry, error) {
	var i Inquiry
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO inquiries (id, name, phone, email, service_slug, message, status, source_page)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, name, phone, email, service_slug, message, status, source_page, read_at, deleted_at, created_at`,
		p.ID, p.Name, p.Phone, p.Email, p.ServiceSlug, p.Message, p.Status, p.SourcePage,
	).Scan(&i.ID, &i.Name, &i.Phone, &i.Email, &i.ServiceSlug, &i.Message, &i.Status, &i.SourcePage, &i.ReadAt, &i.DeletedAt, &i.CreatedAt)
	return i, err
}

func (q *Queries) GetInquiryByID(ctx context.Context, id string) (Inquiry, error) {
	var i Inquiry
	err := q.Pool.QueryRow(ctx,
		`SELECT id, name, phone, email, service_slug, message, status, source_page, read_at, deleted_at, created_at
		FROM inquiries WHERE id = $1`,
		id,
	).Scan(&i.ID, &i.Name, &i.Phone, &i.Email, &i.ServiceSlug, &i.Message, &i.Status, &i.SourcePage, &i.ReadAt, &i.DeletedAt, &i.CreatedAt)
	return i, err
}

// ListLeadsParams is shared by the three lead collections
type ListLeadsParams struct {
	Status         *string
	IncludeDeleted bool
	SortBy         string
	Limit          int
	Offset         int
}

func leadOrderClause(sortBy string) string {
	if sortBy == "status" {
		return "ORDER BY status, created_at DESC"
	}
	return "ORDER BY created_at DESC"
}

func (q *Queries) ListInquiries(ctx context.Context, p ListLeadsParams) ([]Inquiry, error) {
	sql := fmt.Sprintf(
		`SELECT id, name, phone, email, service_slug, message, status, source_page, read_at, deleted_at, created_at
		FROM inquiries
		WHERE ($1::text IS NULL OR status = $1)
		AND ($2 OR deleted_at IS NULL)
		%s LIMIT $3 OFFSET $4`,
		leadOrderClause(p.SortBy),
	)

	rows, err := q.Pool.Query(ctx, sql, p.Status, p.IncludeDeleted, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Inquiry
	for rows.Next() {
		var i Inquiry
		if err := rows.Scan(&i.ID, &i.Name, &i.Phone, &i.Email, &i.ServiceSlug, &i.Message, &i.Status, &i.SourcePage, &i.ReadAt, &i.DeletedAt, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) MarkInquiryRead(ctx context.Context, id string) error {
	tag, err := q.Pool.Exec(ctx,
		"UPDATE inquiries SET read_at = NOW(), status = 'CONTACTED' WHERE id = $1 AND deleted_at IS NULL",
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (q *Queries) UpdateInquiryStatus(ctx context.Context, id, status string) error {
	_, err := q.Pool.Exec(ctx, "UPDATE inquiries SET status = $2 WHERE id = $1", id, status)
	return err
}

func (q *Queries) SoftDeleteInquiry(ctx context.Context, id string) error {
	tag, err := q.Pool.Exec(ctx, "UPDATE inquiries SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Contact represents a contact-form lead row
type Contact struct {
	ID        string
	Name      string
	Email     string
	Phone     *string
	Subject   *string
	Message   string
	Status    string
	ReadAt    *time.Time
	DeletedAt *time.Time
	CreatedAt time.Time
}

type CreateContactParams struct {
	ID      string
	Name    string
	Email   string
	Phone   *string
	Subject *string
	Message string
	Status  string
}

func (q *Queries) CreateContact(ctx context.Context, p CreateContactParams) (Contact, error) {
	var c Contact
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO contacts (id, name, email, phone, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, email, phone, subject, message, status, read_at, deleted_at, created_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Subject, p.Message, p.Status,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message, &c.Status, &c.ReadAt, &c.DeletedAt, &c.CreatedAt)
	return c, err
}

func (q *Queries) ListContacts(ctx context.Context, p ListLeadsParams) ([]Contact, error) {
	sql := fmt.Sprintf(
		`SELECT id, name, email, phone, subject, message, status, read_at, deleted_at, created_at
		FROM contacts
		WHERE ($1::text IS NULL OR status = $1)
		AND ($2 OR deleted_at IS NULL)
		%s LIMIT $3 OFFSET $4`,
		leadOrderClause(p.SortBy),
	)

	rows, err := q.Pool.Query(ctx, sql, p.Status, p.IncludeDeleted, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message, &c.Status, &c.ReadAt, &c.DeletedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (q *Queries) MarkContactRead(ctx context.Context, id string) error {
	tag, err := q.Pool.Exec(ctx,
		"UPDATE contacts SET read_at = NOW(), status = 'CONTACTED' WHERE id = $1 AND deleted_at IS NULL",
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (q *Queries) SoftDeleteContact(ctx context.Context, id string) error {
	tag, err := q.Pool.Exec(ctx, "UPDATE contacts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ExitIntent represents an exit-intent capture row
type ExitIntent struct {
	ID         string
	Email      string
	Phone      *string
	Offer      *string
	SourcePage *string
	Status     string
	ReadAt     *time.Time
	DeletedAt  *time.Time
	CreatedAt  time.Time
}

type CreateExitIntentParams struct {
	ID         string
	Email      string
	Phone      *string
	Offer      *string
	SourcePage *string
	Status     string
}

func (q *Queries) CreateExitIntent(ctx context.Context, p CreateExitIntentParams) (ExitIntent, error) {
	var e ExitIntent
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO exit_intents (id, email, phone, offer, source_page, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, phone, offer, source_page, status, read_at, deleted_at, created_at`,
		p.ID, p.Email, p.Phone, p.Offer, p.SourcePage, p.Status,
	).Scan(&e.ID, &e.Email, &e.Phone, &e.Offer, &e.SourcePage, &e.Status, &e.ReadAt, &e.DeletedAt, &e.CreatedAt)
	return e, err
}

func (q *Queries) ListExitIntents(ctx context.Context, p ListLeadsParams) ([]ExitIntent, error) {
	sql := fmt.Sprintf(
		`SELECT id, email, phone, offer, source_page, status, read_at, deleted_at, created_at
		FROM exit_intents
		WHERE ($1::text IS NULL OR status = $1)
		AND ($2 OR deleted_at IS NULL)
		%s LIMIT $3 OFFSET $4`,
		leadOrderClause(p.SortBy),
	)

	rows, err := q.Pool.Query(ctx, sql, p.Status, p.IncludeDeleted, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ExitIntent
	for rows.Next() {
		var e ExitIntent
		if err := rows.Scan(&e.ID, &e.Email, &e.Phone, &e.Offer, &e.SourcePage, &e.Status, &e.ReadAt, &e.DeletedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (q *Queries) MarkExitIntentRead(ctx context.Context, id string) error {
	tag, err := q.Pool.Exec(ctx,
		"UPDATE exit_intents SET read_at = NOW(), status = 'CONTACTED' WHERE id = $1 AND deleted_at IS NULL",
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (q *Queries) SoftDeleteExitIntent(ctx context.Context, id string) error {
	tag, err := q.Pool.Exec(ctx, "UPDATE exit_intents SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Reminder represents a scheduled follow-up row
type Reminder struct {
	ID        string
	LeadKind  string
	LeadID    string
	RemindAt  time.Time
	CreatedAt time.Time
}

func (q *Queries) CreateReminder(ctx context.Context, id, leadKind, leadID string, remindAt time.Time) (Reminder, error) {
	var r Reminder
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO reminders (id, lead_kind, lead_id, remind_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_kind, lead_id, remind_at, created_at`,
		id, leadKind, leadID, remindAt,
	).Scan(&r.ID, &r.LeadKind, &r.LeadID, &r.RemindAt, &r.CreatedAt)
	return r, err
}

func (q *Queries) GetReminderByID(ctx context.Context, id string) (Reminder, error) {
	var r Reminder
	err := q.Pool.QueryRow(ctx,
		"SELECT id, lead_kind, lead_id, remind_at, created_at FROM reminders WHERE id = $1",
		id,
	).Scan(&r.ID, &r.LeadKind, &r.LeadID, &r.RemindAt, &r.CreatedAt)
	return r, err
}

// GetLeadReadState returns read_at for a lead of any collection, used by the
// follow-up job to decide whether a notification is still warranted.
func (q *Queries) GetLeadReadState(ctx context.Context, leadKind, id string) (*time.Time, error) {
	table, err := leadTable(leadKind)
	if err != nil {
		return nil, err
	}
	var readAt *time.Time
	err = q.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT read_at FROM %s WHERE id = $1 AND deleted_at IS NULL", table),
		id,
	).Scan(&readAt)
	return readAt, err
}

// UpdateLeadStatus sets the status of a lead in any collection.
func (q *Queries) UpdateLeadStatus(ctx context.Context, leadKind, id, status string) error {
	table, err := leadTable(leadKind)
	if err != nil {
		return err
	}
	_, err = q.Pool.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET status = $2 WHERE id = $1 AND deleted_at IS NULL", table),
		id, status,
	)
	return err
}

func leadTable(leadKind string) (string, error) {
	switch leadKind {
	case "inquiry":
		return "inquiries", nil
	case "contact":
		return "contacts", nil
	case "exit_intent":
		return "exit_intents", nil
	}
	return "", fmt.Errorf("unknown lead kind: %s", leadKind)
}

package service

import (
	"context"
	"fmt"
	"time"

	"buildcare/internal/db"
	"buildcare/internal/forms"
	"buildcare/internal/model"

	"github.com/oklog/ulid/v2"
)

// Follow-up timings for freshly captured leads.
const (
	followupAfter = 24 * time.Hour
	staleAfter    = 7 * 24 * time.Hour
)

type LeadService struct {
	queries   *db.Queries
	validator *forms.Validator
	bus       EventBus
	jobClient JobClient
}

type EventBus interface {
	PublishLead(kind model.LeadKind, event map[string]interface{}) error
}

// JobClient schedules the background follow-ups attached to new leads.
type JobClient interface {
	ScheduleFollowup(leadKind model.LeadKind, leadID string, after time.Duration) error
	ScheduleStaleMark(leadKind model.LeadKind, leadID string, after time.Duration) error
	ScheduleReminder(reminderID string, remindAt time.Time) error
}

func NewLeadService(queries *db.Queries, validator *forms.Validator, bus EventBus) *LeadService {
	return &LeadService{
		queries:   queries,
		validator: validator,
		bus:       bus,
	}
}

// SetJobClient sets the job client for scheduling background jobs
func (s *LeadService) SetJobClient(client JobClient) {
	s.jobClient = client
}

// SubmitInquiry validates and persists a repair-inquiry submission.
func (s *LeadService) SubmitInquiry(ctx context.Context, payload map[string]interface{}) (*model.Inquiry, error) {
	if err := s.validator.Validate(model.LeadKindInquiry, payload); err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	inquiry, err := s.queries.CreateInquiry(ctx, db.CreateInquiryParams{
		ID:          id,
		Name:        stringField(payload, "name"),
		Phone:       stringField(payload, "phone"),
		Email:       optField(payload, "email"),
		ServiceSlug: optField(payload, "serviceSlug"),
		Message:     optField(payload, "message"),
		Status:      string(model.LeadStatusNew),
		SourcePage:  optField(payload, "sourcePage"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	s.afterCapture(model.LeadKindInquiry, id)
	return dbInquiryToModel(inquiry), nil
}

// SubmitContact validates and persists a contact-form submission.
func (s *LeadService) SubmitContact(ctx context.Context, payload map[string]interface{}) (*model.Contact, error) {
	if err := s.validator.Validate(model.LeadKindContact, payload); err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	contact, err := s.queries.CreateContact(ctx, db.CreateContactParams{
		ID:      id,
		Name:    stringField(payload, "name"),
		Email:   stringField(payload, "email"),
		Phone:   optField(payload, "phone"),
		Subject: optField(payload, "subject"),
		Message: stringField(payload, "message"),
		Status:  string(model.LeadStatusNew),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.afterCapture(model.LeadKindContact, id)
	return dbContactToModel(contact), nil
}

// SubmitExitIntent validates and persists an exit-intent capture.
func (s *LeadService) SubmitExitIntent(ctx context.Context, payload map[string]interface{}) (*model.ExitIntent, error) {
	if err := s.validator.Validate(model.LeadKindExitIntent, payload); err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	capture, err := s.queries.CreateExitIntent(ctx, db.CreateExitIntentParams{
		ID:         id,
		Email:      stringField(payload, "email"),
		Phone:      optField(payload, "phone"),
		Offer:      optField(payload, "offer"),
		SourcePage: optField(payload, "sourcePage"),
		Status:     string(model.LeadStatusNew),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exit intent: %w", err)
	}

	s.afterCapture(model.LeadKindExitIntent, id)
	return dbExitIntentToModel(capture), nil
}

// afterCapture publishes the creation event and queues follow-ups. Both are
// best-effort; the lead itself is already committed.
func (s *LeadService) afterCapture(kind model.LeadKind, id string) {
	_ = s.bus.PublishLead(kind, map[string]interface{}{
		"type":   "lead.created",
		"kind":   string(kind),
		"leadId": id,
	})

	if s.jobClient != nil {
		_ = s.jobClient.ScheduleFollowup(kind, id, followupAfter)
		_ = s.jobClient.ScheduleStaleMark(kind, id, staleAfter)
	}
}

func (s *LeadService) ListInquiries(ctx context.Context, p db.ListLeadsParams) ([]*model.Inquiry, error) {
	items, err := s.queries.ListInquiries(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	out := make([]*model.Inquiry, 0, len(items))
	for _, i := range items {
		out = append(out, dbInquiryToModel(i))
	}
	return out, nil
}

func (s *LeadService) ListContacts(ctx context.Context, p db.ListLeadsParams) ([]*model.Contact, error) {
	items, err := s.queries.ListContacts(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	out := make([]*model.Contact, 0, len(items))
	for _, c := range items {
		out = append(out, dbContactToModel(c))
	}
	return out, nil
}

func (s *LeadService) ListExitIntents(ctx context.Context, p db.ListLeadsParams) ([]*model.ExitIntent, error) {
	items, err := s.queries.ListExitIntents(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list exit intents: %w", err)
	}
	out := make([]*model.ExitIntent, 0, len(items))
	for _, e := range items {
		out = append(out, dbExitIntentToModel(e))
	}
	return out, nil
}

// MarkRead marks a lead read and notifies the dashboard channel.
func (s *LeadService) MarkRead(ctx context.Context, kind model.LeadKind, id string) error {
	var err error
	switch kind {
	case model.LeadKindInquiry:
		err = s.queries.MarkInquiryRead(ctx, id)
	case model.LeadKindContact:
		err = s.queries.MarkContactRead(ctx, id)
	case model.LeadKindExitIntent:
		err = s.queries.MarkExitIntentRead(ctx, id)
	default:
		return fmt.Errorf("unknown lead kind: %s", kind)
	}
	if err != nil {
		return fmt.Errorf("failed to mark lead read: %w", err)
	}

	_ = s.bus.PublishLead(kind, map[string]interface{}{
		"type":   "lead.read",
		"kind":   string(kind),
		"leadId": id,
	})
	return nil
}

// SoftDelete hides a lead from the dashboard without destroying the row.
// The published event lets open dashboards drop it from their cache.
func (s *LeadService) SoftDelete(ctx context.Context, kind model.LeadKind, id string) error {
	var err error
	switch kind {
	case model.LeadKindInquiry:
		err = s.queries.SoftDeleteInquiry(ctx, id)
	case model.LeadKindContact:
		err = s.queries.SoftDeleteContact(ctx, id)
	case model.LeadKindExitIntent:
		err = s.queries.SoftDeleteExitIntent(ctx, id)
	default:
		return fmt.Errorf("unknown lead kind: %s", kind)
	}
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	_ = s.bus.PublishLead(kind, map[string]interface{}{
		"type":   "lead.deleted",
		"kind":   string(kind),
		"leadId": id,
	})
	return nil
}

// Snooze schedules a reminder for a lead at the given time.
func (s *LeadService) Snooze(ctx context.Context, kind model.LeadKind, id string, remindAt time.Time) error {
	reminderID := ulid.Make().String()
	if _, err := s.queries.CreateReminder(ctx, reminderID, string(kind), id, remindAt); err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	if s.jobClient != nil {
		if err := s.jobClient.ScheduleReminder(reminderID, remindAt); err != nil {
			return fmt.Errorf("failed to schedule reminder: %w", err)
		}
	}
	return nil
}

func stringField(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func optField(m map[string]interface{}, key string) *string {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func dbInquiryToModel(i db.Inquiry) *model.Inquiry {
	return &model.Inquiry{
		ID:          i.ID,
		Name:        i.Name,
		Phone:       i.Phone,
		Email:       derefString(i.Email),
		ServiceSlug: derefString(i.ServiceSlug),
		Message:     derefString(i.Message),
		Status:      model.LeadStatus(i.Status),
		SourcePage:  derefString(i.SourcePage),
		ReadAt:      timePtrToString(i.ReadAt),
		CreatedAt:   i.CreatedAt.Format(time.RFC3339),
	}
}

func dbContactToModel(c db.Contact) *model.Contact {
	return &model.Contact{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     derefString(c.Phone),
		Subject:   derefString(c.Subject),
		Message:   c.Message,
		Status:    model.LeadStatus(c.Status),
		ReadAt:    timePtrToString(c.ReadAt),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func dbExitIntentToModel(e db.ExitIntent) *model.ExitIntent {
	return &model.ExitIntent{
		ID:         e.ID,
		Email:      e.Email,
		Phone:      derefString(e.Phone),
		Offer:      derefString(e.Offer),
		SourcePage: derefString(e.SourcePage),
		Status:     model.LeadStatus(e.Status),
		ReadAt:     timePtrToString(e.ReadAt),
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

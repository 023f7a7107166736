package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"buildcare/internal/db"
	"buildcare/internal/model"
	"buildcare/internal/pubsub"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TaskLeadFollowup = "lead:followup"
	TaskLeadStale    = "lead:stale"
	TaskSnoozeRemind = "reminder:snooze"
)

type JobServer struct {
	server *asynq.Server
	client *asynq.Client
	db     *db.Pool
	bus    *pubsub.Bus
	log    *zap.Logger
}

func NewJobServer(redisAddr string, dbPool *db.Pool, bus *pubsub.Bus, log *zap.Logger) (*JobServer, *asynq.Client) {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	client := asynq.NewClient(redisOpt)

	return &JobServer{
		server: server,
		client: client,
		db:     dbPool,
		bus:    bus,
		log:    log,
	}, client
}

func (js *JobServer) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskLeadFollowup, js.handleLeadFollowup)
	mux.HandleFunc(TaskLeadStale, js.handleLeadStale)
	mux.HandleFunc(TaskSnoozeRemind, js.handleReminder)

	return js.server.Start(mux)
}

func (js *JobServer) Stop() {
	js.server.Shutdown()
	js.client.Close()
}

// leadTaskPayload identifies a lead across the three collections.
type leadTaskPayload struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// Job handlers

// handleLeadFollowup nudges the dashboard when a lead is still unread a day
// after capture.
func (js *JobServer) handleLeadFollowup(ctx context.Context, t *asynq.Task) error {
	var p leadTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	readAt, err := js.db.Queries.GetLeadReadState(ctx, p.Kind, p.ID)
	if err != nil {
		// Lead deleted in the meantime; nothing to do.
		return nil
	}
	if readAt != nil {
		return nil
	}

	_ = js.bus.PublishLead(model.LeadKind(p.Kind), map[string]interface{}{
		"type":   "lead.followup_due",
		"kind":   p.Kind,
		"leadId": p.ID,
	})

	js.log.Info("Lead follow-up notification sent", zap.String("kind", p.Kind), zap.String("lead_id", p.ID))
	return nil
}

// handleLeadStale marks a lead STALE when nobody has read it after a week.
func (js *JobServer) handleLeadStale(ctx context.Context, t *asynq.Task) error {
	var p leadTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	readAt, err := js.db.Queries.GetLeadReadState(ctx, p.Kind, p.ID)
	if err != nil {
		return nil
	}
	if readAt != nil {
		return nil
	}

	if err := js.db.Queries.UpdateLeadStatus(ctx, p.Kind, p.ID, string(model.LeadStatusStale)); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	_ = js.bus.PublishLead(model.LeadKind(p.Kind), map[string]interface{}{
		"type":   "lead.stale",
		"kind":   p.Kind,
		"leadId": p.ID,
	})

	js.log.Info("Lead marked stale", zap.String("kind", p.Kind), zap.String("lead_id", p.ID))
	return nil
}

func (js *JobServer) handleReminder(ctx context.Context, t *asynq.Task) error {
	reminderID := string(t.Payload())

	reminder, err := js.db.Queries.GetReminderByID(ctx, reminderID)
	if err != nil {
		return fmt.Errorf("failed to get reminder: %w", err)
	}

	_ = js.bus.PublishLead(model.LeadKind(reminder.LeadKind), map[string]interface{}{
		"type":       "lead.reminder",
		"kind":       reminder.LeadKind,
		"leadId":     reminder.LeadID,
		"reminderId": reminderID,
	})

	js.log.Info("Reminder sent", zap.String("reminder_id", reminderID), zap.String("lead_id", reminder.LeadID))
	return nil
}

// Schedule jobs

func ScheduleFollowup(client *asynq.Client, kind model.LeadKind, leadID string, after time.Duration) error {
	payload, err := json.Marshal(leadTaskPayload{Kind: string(kind), ID: leadID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskLeadFollowup, payload)
	_, err = client.Enqueue(task, asynq.ProcessIn(after))
	return err
}

func ScheduleStaleMark(client *asynq.Client, kind model.LeadKind, leadID string, after time.Duration) error {
	payload, err := json.Marshal(leadTaskPayload{Kind: string(kind), ID: leadID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskLeadStale, payload, asynq.Queue("low"))
	_, err = client.Enqueue(task, asynq.ProcessIn(after))
	return err
}

func ScheduleReminder(client *asynq.Client, reminderID string, remindAt time.Time) error {
	if remindAt.Before(time.Now()) {
		return nil // Already past reminder time
	}

	task := asynq.NewTask(TaskSnoozeRemind, []byte(reminderID))
	_, err := client.Enqueue(task, asynq.ProcessIn(time.Until(remindAt)))
	return err
}

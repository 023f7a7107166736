package service

import (
	"time"

	"buildcare/internal/jobs"
	"buildcare/internal/model"

	"github.com/hibiken/asynq"
)

// AsynqJobClient adapts the asynq client to the JobClient interface used by
// LeadService.
type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(client *asynq.Client) *AsynqJobClient {
	return &AsynqJobClient{client: client}
}

func (c *AsynqJobClient) ScheduleFollowup(leadKind model.LeadKind, leadID string, after time.Duration) error {
	return jobs.ScheduleFollowup(c.client, leadKind, leadID, after)
}

func (c *AsynqJobClient) ScheduleStaleMark(leadKind model.LeadKind, leadID string, after time.Duration) error {
	return jobs.ScheduleStaleMark(c.client, leadKind, leadID, after)
}

func (c *AsynqJobClient) ScheduleReminder(reminderID string, remindAt time.Time) error {
	return jobs.ScheduleReminder(c.client, reminderID, remindAt)
}

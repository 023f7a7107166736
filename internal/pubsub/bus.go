package pubsub

import (
	"context"
	"encoding/json"

	"buildcare/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bus fans events out to Redis pub/sub, to the durable stream (for replay)
// and to the local WebSocket hub. The admin dashboard subscribes to the
// lead channels; the chat widget can subscribe to its own session channel.
type Bus struct {
	rdb     *redis.Client
	log     *zap.Logger
	ctx     context.Context
	wsHub   WSHub
	streams *Streams
}

type WSHub interface {
	Publish(channel string, message map[string]interface{})
}

func New(rdb *redis.Client, log *zap.Logger) *Bus {
	return &Bus{
		rdb:     rdb,
		log:     log,
		ctx:     context.Background(),
		streams: NewStreams(rdb, log),
	}
}

// SetWSHub sets the WebSocket hub for event broadcasting
func (b *Bus) SetWSHub(hub WSHub) {
	b.wsHub = hub
}

// GetStreams returns the streams provider
func (b *Bus) GetStreams() *Streams {
	return b.streams
}

// LeadChannel names the per-collection event channel.
func LeadChannel(kind model.LeadKind) string {
	return "leads:" + string(kind)
}

// ChatChannel names the per-session chat event channel.
func ChatChannel(sessionID string) string {
	return "chat:" + sessionID
}

// PublishLead publishes an event to a lead collection's channel
func (b *Bus) PublishLead(kind model.LeadKind, event map[string]interface{}) error {
	return b.Publish(LeadChannel(kind), event)
}

// PublishChat publishes an event to a chat session's channel
func (b *Bus) PublishChat(sessionID string, event map[string]interface{}) error {
	return b.Publish(ChatChannel(sessionID), event)
}

// Publish publishes an event to a channel
func (b *Bus) Publish(channel string, event map[string]interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := b.rdb.Publish(b.ctx, channel, data).Err(); err != nil {
		b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
		return err
	}

	// Durable copy for resume/replay; losing it degrades replay only.
	seq, err := b.streams.PublishEvent(channel, event)
	if err != nil {
		b.log.Warn("Failed to publish to stream", zap.String("channel", channel), zap.Error(err))
	}

	eventWithSeq := make(map[string]interface{}, len(event)+1)
	for k, v := range event {
		eventWithSeq[k] = v
	}
	eventWithSeq["seq"] = seq

	if b.wsHub != nil {
		b.wsHub.Publish(channel, eventWithSeq)
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.Int64("seq", seq))
	return nil
}

package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Retained stream length per channel; old lead events past this are only in
// the database anyway.
const streamMaxLen = 1024

// StreamEvent represents an event stored in Redis Streams
type StreamEvent struct {
	Channel   string
	Sequence  int64
	Event     map[string]interface{}
	Timestamp time.Time
}

// Streams keeps a durable, sequence-numbered copy of every published event
// so reconnecting dashboard clients can resume without missing deletes.
type Streams struct {
	rdb *redis.Client
	log *zap.Logger
	ctx context.Context
}

// NewStreams creates a new Streams manager
func NewStreams(rdb *redis.Client, log *zap.Logger) *Streams {
	return &Streams{
		rdb: rdb,
		log: log,
		ctx: context.Background(),
	}
}

// PublishEvent appends an event to a channel's stream and returns its
// per-channel sequence number.
func (s *Streams) PublishEvent(channel string, event map[string]interface{}) (int64, error) {
	seq, err := s.rdb.Incr(s.ctx, "seq:"+channel).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	stored := make(map[string]interface{}, len(event)+3)
	for k, v := range event {
		stored[k] = v
	}
	stored["seq"] = seq
	stored["channel"] = channel
	stored["timestamp"] = time.Now().Format(time.RFC3339)

	data, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.rdb.XAdd(s.ctx, &redis.XAddArgs{
		Stream: "stream:" + channel,
		MaxLen: streamMaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add to stream: %w", err)
	}

	return seq, nil
}

// GetLastSequence gets the last acknowledged sequence for a channel and connection
func (s *Streams) GetLastSequence(channel, connectionID string) (int64, error) {
	seqStr, err := s.rdb.Get(s.ctx, ackKey(channel, connectionID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get last sequence: %w", err)
	}

	seq, err := strconv.ParseInt(seqStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sequence: %w", err)
	}
	return seq, nil
}

// AcknowledgeSequence records an acknowledgment for a sequence number
func (s *Streams) AcknowledgeSequence(channel, connectionID string, sequence int64) error {
	if err := s.rdb.Set(s.ctx, ackKey(channel, connectionID), sequence, 0).Err(); err != nil {
		return fmt.Errorf("failed to acknowledge sequence: %w", err)
	}
	return nil
}

// ReplayEvents returns up to limit events of a channel with a sequence
// strictly greater than sinceSeq, oldest first.
func (s *Streams) ReplayEvents(channel string, sinceSeq int64, limit int64) ([]StreamEvent, error) {
	messages, err := s.rdb.XRangeN(s.ctx, "stream:"+channel, "-", "+", streamMaxLen).Result()
	if err == redis.Nil {
		return []StreamEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}

	events := make([]StreamEvent, 0, limit)
	for _, msg := range messages {
		data, ok := msg.Values["data"].(string)
		if !ok {
			continue
		}

		var stored map[string]interface{}
		if err := json.Unmarshal([]byte(data), &stored); err != nil {
			s.log.Warn("Failed to unmarshal stream event", zap.Error(err))
			continue
		}

		seqFloat, _ := stored["seq"].(float64)
		seq := int64(seqFloat)
		if seq <= sinceSeq {
			continue
		}

		timestampStr, _ := stored["timestamp"].(string)
		timestamp, _ := time.Parse(time.RFC3339, timestampStr)
		if timestamp.IsZero() {
			timestamp = time.Now()
		}

		event := make(map[string]interface{})
		for k, v := range stored {
			if k != "seq" && k != "channel" && k != "timestamp" {
				event[k] = v
			}
		}

		events = append(events, StreamEvent{
			Channel:   channel,
			Sequence:  seq,
			Event:     event,
			Timestamp: timestamp,
		})
		if int64(len(events)) >= limit {
			break
		}
	}

	return events, nil
}

func ackKey(channel, connectionID string) string {
	return fmt.Sprintf("ack:%s:%s", channel, connectionID)
}

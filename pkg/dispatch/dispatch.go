// Package dispatch hands executable intent results to executors over an
// event bus. Nothing here executes an intent.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-scheduler-be/internal/pkg/logger"
	"ai-scheduler-be/pkg/events"
	"ai-scheduler-be/pkg/intent"
	natsbus "ai-scheduler-be/pkg/nats"
	"ai-scheduler-be/pkg/pending"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Topic is the in-process topic every resolved intent is published on; the
// intent name travels in the "intent" metadata key
const Topic = "intents"

// Envelope is one result plus where it came from. Confirmed is the pending
// record a confirmation consumed; it carries what the executor should run.
type Envelope struct {
	ThreadID  string
	UserID    string
	Turn      uint64
	Result    *intent.Result
	Confirmed *pending.State
}

type Dispatcher interface {
	Dispatch(ctx context.Context, env Envelope) error
}

// ShouldDispatch reports whether an executor has anything to run for res.
// A result still waiting on the user's confirmation is held back; only the
// confirmation that consumes its record is handed over.
func ShouldDispatch(res *intent.Result) bool {
	return res.Executable() && !res.RequiresConfirm && res.NextPending == nil
}

func newEvent(env Envelope, now time.Time) (events.IntentResolved, error) {
	raw, err := env.Result.Encode()
	if err != nil {
		return events.IntentResolved{}, fmt.Errorf("encode result: %w", err)
	}
	var confirmed json.RawMessage
	if env.Confirmed != nil {
		if confirmed, err = json.Marshal(env.Confirmed); err != nil {
			return events.IntentResolved{}, fmt.Errorf("encode confirmed: %w", err)
		}
	}
	return events.IntentResolved{
		ID:         uuid.NewString(),
		Intent:     string(env.Result.Intent),
		ThreadID:   env.ThreadID,
		UserID:     env.UserID,
		Turn:       env.Turn,
		Result:     raw,
		Confirmed:  confirmed,
		OccurredAt: now,
	}, nil
}

// Bus publishes on a watermill publisher, usually gochannel
type Bus struct {
	pub message.Publisher
	log logger.ILogger
	now func() time.Time
}

func NewBus(pub message.Publisher, log logger.ILogger) *Bus {
	return &Bus{pub: pub, log: log, now: time.Now}
}

func (b *Bus) Dispatch(ctx context.Context, env Envelope) error {
	if !ShouldDispatch(env.Result) {
		return nil
	}
	ev, err := newEvent(env, b.now())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(ev.ID, payload)
	msg.Metadata.Set("event_type", ev.EventType())
	msg.Metadata.Set("intent", ev.Intent)
	msg.SetContext(ctx)

	if err := b.pub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Intent, err)
	}
	b.log.Debug("DISPATCH", "Intent published", map[string]interface{}{
		"intent":    ev.Intent,
		"thread_id": env.ThreadID,
		"event_id":  ev.ID,
	})
	return nil
}

type jetStreamPublisher interface {
	Publish(ctx context.Context, subject, msgID string, event events.Event) error
}

// JetStream publishes each result on intents.<name>
type JetStream struct {
	pub jetStreamPublisher
	log logger.ILogger
	now func() time.Time
}

func NewJetStream(pub jetStreamPublisher, log logger.ILogger) *JetStream {
	return &JetStream{pub: pub, log: log, now: time.Now}
}

func (j *JetStream) Dispatch(ctx context.Context, env Envelope) error {
	if !ShouldDispatch(env.Result) {
		return nil
	}
	ev, err := newEvent(env, j.now())
	if err != nil {
		return err
	}
	subject := natsbus.Subject(ev.Intent)
	if err := j.pub.Publish(ctx, subject, ev.ID, ev); err != nil {
		return err
	}
	j.log.Debug("DISPATCH", "Intent published", map[string]interface{}{
		"subject":   subject,
		"thread_id": env.ThreadID,
		"event_id":  ev.ID,
	})
	return nil
}

// Nop drops everything
type Nop struct{}

func (Nop) Dispatch(context.Context, Envelope) error { return nil }

// Handler receives decoded events from Listen
type Handler func(ctx context.Context, ev events.IntentResolved) error

// Listen consumes Topic from sub until ctx ends. Undecodable messages are
// acked and dropped; handler errors nack for redelivery.
func Listen(ctx context.Context, sub message.Subscriber, log logger.ILogger, handler Handler) error {
	messages, err := sub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			ev, err := events.DecodeIntentResolved(msg.Payload)
			if err != nil {
				log.Error("DISPATCH", "Failed to decode event", map[string]interface{}{
					"message_id": msg.UUID,
					"error":      err.Error(),
				})
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), ev); err != nil {
				log.Warn("DISPATCH", "Handler failed", map[string]interface{}{
					"intent": ev.Intent,
					"error":  err.Error(),
				})
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

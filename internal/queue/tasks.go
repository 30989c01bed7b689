// Package queue moves domain events onto asynq tasks and processes them in
// the worker.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-material/internal/db"
)

// DefaultQueue is the asynq queue event tasks are enqueued on.
const DefaultQueue = "events"

const typePrefix = "event:"

// TypeFor returns the asynq task type for an event topic.
func TypeFor(topic string) string {
	return typePrefix + topic
}

// TopicOf is the inverse of TypeFor.
func TopicOf(taskType string) string {
	return strings.TrimPrefix(taskType, typePrefix)
}

// EventPayload is the task body: the stored domain event.
type EventPayload struct {
	ID          int64           `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher implements events.Notifier by enqueuing one task per event.
type Dispatcher struct {
	Client   Enqueuer
	Queue    string
	MaxRetry int
	Timeout  time.Duration
}

// Notify enqueues ev. The event id doubles as the task id, so a repeated
// notification for the same event is dropped.
func (d Dispatcher) Notify(ctx context.Context, ev db.DomainEvent) error {
	if d.Client == nil {
		return errors.New("queue: client not configured")
	}
	body, err := json.Marshal(EventPayload{
		ID:          ev.ID,
		Topic:       ev.Topic,
		AggregateID: ev.AggregateID,
		Payload:     ev.Payload,
		OccurredAt:  ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("queue: encode event: %w", err)
	}
	opts := []asynq.Option{asynq.Queue(d.queue())}
	if ev.ID > 0 {
		opts = append(opts, asynq.TaskID("event-"+strconv.FormatInt(ev.ID, 10)))
	}
	if d.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(d.MaxRetry))
	}
	if d.Timeout > 0 {
		opts = append(opts, asynq.Timeout(d.Timeout))
	}
	_, err = d.Client.EnqueueContext(ctx, asynq.NewTask(TypeFor(ev.Topic), body), opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("queue: enqueue %s: %w", ev.Topic, err)
	}
	return nil
}

func (d Dispatcher) queue() string {
	if d.Queue == "" {
		return DefaultQueue
	}
	return d.Queue
}

// DecodeEvent reads the payload of an event task.
func DecodeEvent(t *asynq.Task) (EventPayload, error) {
	var ev EventPayload
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return EventPayload{}, fmt.Errorf("decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if ev.Topic == "" {
		ev.Topic = TopicOf(t.Type())
	}
	return ev, nil
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-material/internal/events"
	"github.com/noah-isme/backend-material/internal/obs"
)

// Purger drops a read-through cache.
type Purger interface {
	Purge(ctx context.Context) error
}

// CheckoutRecorder counts generated checkout summaries.
type CheckoutRecorder interface {
	RecordCheckoutSummary(ctx context.Context, at time.Time) error
}

// Processor handles event tasks in the worker.
type Processor struct {
	Catalog   Purger
	Discount  Purger
	Analytics CheckoutRecorder
	Logger    zerolog.Logger
}

// Register mounts a handler for every subscribed topic on mux.
func (p *Processor) Register(mux *asynq.ServeMux) {
	handlers := map[string]func(context.Context, EventPayload) error{
		events.TopicCatalogChanged:         p.catalogChanged,
		events.TopicPromotionChanged:       p.promotionChanged,
		events.TopicCheckoutSummaryCreated: p.summaryCreated,
	}
	for _, topic := range events.DefaultTopics() {
		if fn, ok := handlers[topic]; ok {
			mux.HandleFunc(TypeFor(topic), p.observe(fn))
		}
	}
}

// Catalog edits can delete products referenced by the promotion, so both
// caches go.
func (p *Processor) catalogChanged(ctx context.Context, _ EventPayload) error {
	return errors.Join(purge(ctx, "catalog", p.Catalog), purge(ctx, "discount", p.Discount))
}

func (p *Processor) promotionChanged(ctx context.Context, _ EventPayload) error {
	return purge(ctx, "discount", p.Discount)
}

func (p *Processor) summaryCreated(ctx context.Context, ev EventPayload) error {
	if p.Analytics == nil {
		return nil
	}
	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	if err := p.Analytics.RecordCheckoutSummary(ctx, at); err != nil {
		return fmt.Errorf("record checkout summary: %w", err)
	}
	return nil
}

func purge(ctx context.Context, name string, p Purger) error {
	if p == nil {
		return nil
	}
	if err := p.Purge(ctx); err != nil {
		return fmt.Errorf("purge %s cache: %w", name, err)
	}
	return nil
}

func (p *Processor) observe(fn func(context.Context, EventPayload) error) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		topic := TopicOf(t.Type())
		ev, err := DecodeEvent(t)
		if err == nil {
			err = fn(ctx, ev)
		}
		result := "ok"
		switch {
		case errors.Is(err, asynq.SkipRetry):
			result = "skipped"
		case err != nil:
			result = "error"
		}
		if obs.EventTasksTotal != nil {
			obs.EventTasksTotal.WithLabelValues(topic, result).Inc()
		}
		logEvt := p.Logger.Debug()
		if err != nil {
			logEvt = p.Logger.Warn().Err(err)
		}
		logEvt.Str("topic", topic).Str("aggregate_id", ev.AggregateID).Int64("event_id", ev.ID).Msg("event task processed")
		return err
	}
}

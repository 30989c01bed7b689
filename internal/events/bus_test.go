package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/events"
)

type stubStore struct {
	lastParams db.InsertDomainEventParams
	nextID     int64
}

func (s *stubStore) InsertDomainEvent(_ context.Context, arg db.InsertDomainEventParams) (db.DomainEvent, error) {
	s.lastParams = arg
	s.nextID++
	return db.DomainEvent{
		ID:          s.nextID,
		Topic:       arg.Topic,
		AggregateID: arg.AggregateID,
		Payload:     arg.Payload,
		OccurredAt:  time.Now(),
	}, nil
}

type captureNotifier struct {
	events []db.DomainEvent
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event db.DomainEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := events.Bus{
		Store:     store,
		Notifiers: []events.Notifier{notifier},
	}

	payload := map[string]any{"promotionId": 7}
	event, err := bus.Emit(context.Background(), events.TopicPromotionChanged, "7", payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicPromotionChanged, store.lastParams.Topic)
	require.Equal(t, "7", store.lastParams.AggregateID)
	require.JSONEq(t, `{"promotionId":7}`, string(store.lastParams.Payload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.EqualValues(t, 7, decoded["promotionId"])
}

func TestEmitValidatesInput(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), " ", "1", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicCatalogChanged, "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicCatalogChanged, "1", "not json")
	require.Error(t, err)

	var nilBus *events.Bus
	_, err = nilBus.Emit(context.Background(), events.TopicCatalogChanged, "1", nil)
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	store := &stubStore{}
	failing := &captureNotifier{err: errors.New("queue down")}
	ok := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{failing, nil, ok}}

	event, err := bus.Emit(context.Background(), events.TopicCatalogChanged, "products", nil)
	require.ErrorContains(t, err, "queue down")
	require.Equal(t, int64(1), event.ID)
	require.JSONEq(t, `{}`, string(store.lastParams.Payload))
	require.Len(t, ok.events, 1)
}

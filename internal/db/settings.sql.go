package db

import (
	"context"
	"encoding/json"
)

const listAppSettings = `SELECT key, value, updated_at FROM app_settings ORDER BY key`

func (q *Queries) ListAppSettings(ctx context.Context) ([]AppSetting, error) {
	rows, err := q.db.Query(ctx, listAppSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AppSetting
	for rows.Next() {
		var i AppSetting
		if err := rows.Scan(&i.Key, &i.Value, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertAppSetting = `INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
RETURNING key, value, updated_at`

func (q *Queries) UpsertAppSetting(ctx context.Context, key string, value json.RawMessage) (AppSetting, error) {
	var i AppSetting
	err := q.db.QueryRow(ctx, upsertAppSetting, key, value).Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const getUserRole = `SELECT role FROM users WHERE id = $1::uuid`

func (q *Queries) GetUserRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := q.db.QueryRow(ctx, getUserRole, userID).Scan(&role)
	return role, err
}

type InsertDomainEventParams struct {
	Topic       string
	AggregateID string
	Payload     json.RawMessage
}

const insertDomainEvent = `INSERT INTO domain_events (topic, aggregate_id, payload) VALUES ($1, $2, $3)
RETURNING id, topic, aggregate_id, payload, occurred_at`

func (q *Queries) InsertDomainEvent(ctx context.Context, arg InsertDomainEventParams) (DomainEvent, error) {
	var i DomainEvent
	err := q.db.QueryRow(ctx, insertDomainEvent, arg.Topic, arg.AggregateID, arg.Payload).
		Scan(&i.ID, &i.Topic, &i.AggregateID, &i.Payload, &i.OccurredAt)
	return i, err
}

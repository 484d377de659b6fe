package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fitgap/internal/domain"
)

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type EventPayload map[string]any

// Append writes one audit row. Callers pass the engagement the entity belongs
// to and the analyst who triggered the change.
func (w Writer) Append(ctx context.Context, evtType, engagementID, entityKind, entityID, actorID string, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = w.DB.ExecContext(ctx, `INSERT INTO events(ts,type,engagement_id,entity_kind,entity_id,actor_id,payload_json) VALUES (?,?,?,?,?,?,?)`,
		ts, evtType, nullable(engagementID), entityKind, nullable(entityID), actorID, string(data))
	return err
}

// Tail returns the latest n events for an engagement, oldest first.
func (w Writer) Tail(ctx context.Context, engagementID string, n int) ([]domain.Event, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := w.DB.QueryContext(ctx, `SELECT id,ts,type,COALESCE(engagement_id,''),entity_kind,COALESCE(entity_id,''),actor_id,payload_json
FROM (SELECT * FROM events WHERE engagement_id=? ORDER BY id DESC LIMIT ?) ORDER BY id`, engagementID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EngagementID, &e.EntityKind, &e.EntityID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

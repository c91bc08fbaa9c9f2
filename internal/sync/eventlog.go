package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
)

var ErrNotFound = errors.New("no event for key")

type Event struct {
	Seq       int64           `json:"seq"`
	SiteID    string          `json:"siteId"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"createdAt"`
}

type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, string(e.Data), time.Now().Unix())
	return err
}

// Latest returns the newest event stored under key.
func (r *EventRepo) Latest(ctx context.Context, key string) (Event, error) {
	var (
		e    Event
		data string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT seq, site_id, typ, key, data, created_at
		   FROM event_log WHERE key = $1 ORDER BY seq DESC LIMIT 1`, key).
		Scan(&e.Seq, &e.SiteID, &e.Type, &e.Key, &data, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, err
	}
	e.Data = json.RawMessage(data)
	return e, nil
}

// Ping reports whether the ledger database is reachable.
func (r *EventRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// Name and Record make the repo a result sink.
func (r *EventRepo) Name() string { return "ledger" }

func (r *EventRepo) Record(ctx context.Context, roundID string, env protocol.Envelope) error {
	buf, err := env.JSON()
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Type, err)
	}
	return r.Append(ctx, Event{Type: string(env.Type), Key: roundID, Data: buf})
}

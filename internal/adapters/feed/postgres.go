package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var _ Feed = (*PostgresFeed)(nil)

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// PostgresFeed uses LISTEN/NOTIFY. Publishing goes through the shared sqlx
// pool; listening holds a dedicated pgx connection, re-established with
// backoff when it drops. The tracking_events trigger notifies the same
// channel, so writes made outside the API are seen too.
type PostgresFeed struct {
	db      *sqlx.DB
	dsn     string
	channel string
}

func NewPostgresFeed(db *sqlx.DB, dsn, channel string) *PostgresFeed {
	if channel == "" {
		channel = Channel
	}
	return &PostgresFeed{db: db, dsn: dsn, channel: channel}
}

func (f *PostgresFeed) Publish(ctx context.Context, change domain.TrackingChange) error {
	data, err := encode(change)
	if err != nil {
		return err
	}
	if _, err := f.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", f.channel, string(data)); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

func (f *PostgresFeed) Subscribe(ctx context.Context) (<-chan domain.TrackingChange, error) {
	conn, err := f.listen(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.TrackingChange)
	go f.run(ctx, conn, out)
	return out, nil
}

func (f *PostgresFeed) listen(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, f.dsn)
	if err != nil {
		return nil, fmt.Errorf("listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{f.channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen %s: %w", f.channel, err)
	}
	return conn, nil
}

func (f *PostgresFeed) run(ctx context.Context, conn *pgx.Conn, out chan<- domain.TrackingChange) {
	defer close(out)
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	delay := minReconnectDelay
	for {
		if conn == nil {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}

			var err error
			conn, err = f.listen(ctx)
			if err != nil {
				delay = min(delay*2, maxReconnectDelay)
				log.WithError(err).Warnf("[FEED] postgres reconnect failed, next attempt in %s", delay)
				continue
			}
			log.Info("[FEED] postgres listener reconnected")
			delay = minReconnectDelay
		}

		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.WithError(err).Warn("[FEED] postgres listener lost its connection")
			_ = conn.Close(context.Background())
			conn = nil
			continue
		}

		change, err := decode(n.Payload)
		if err != nil {
			log.WithError(err).Warn("[FEED] dropping malformed notification")
			continue
		}

		select {
		case out <- change:
		case <-ctx.Done():
			return
		}
	}
}

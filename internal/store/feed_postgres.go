package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresFeed implements ChangeFeed over Postgres LISTEN/NOTIFY. The
// watched table is expected to have triggers issuing
// NOTIFY <table>_changes on insert, update and delete.
type postgresFeed struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresFeed creates a change feed backed by Postgres
// LISTEN/NOTIFY.
func NewPostgresFeed(pool *pgxpool.Pool, logger zerolog.Logger) ChangeFeed {
	return &postgresFeed{
		pool:   pool,
		logger: logger.With().Str("feed", "postgres").Logger(),
	}
}

// Subscribe acquires a dedicated connection, listens on the table's
// notification channel and invokes onChange for every notification.
func (f *postgresFeed) Subscribe(ctx context.Context, table string, onChange func()) (Subscription, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire feed connection: %w", err)
	}

	channel := table + "_changes"
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &postgresSubscription{cancel: cancel}

	go func() {
		defer func() {
			// The connection goes back to the pool; drop the
			// subscription first or the next borrower inherits it.
			unlistenCtx, cancelUnlisten := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelUnlisten()
			if _, err := conn.Exec(unlistenCtx, "UNLISTEN "+channel); err != nil {
				f.logger.Warn().Err(err).Str("channel", channel).Msg("failed to unlisten")
			}
			conn.Release()
		}()
		for {
			// Blocks until a notification arrives or the context ends.
			_, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					f.logger.Debug().Str("channel", channel).Msg("feed subscription closed")
					return
				}
				f.logger.Error().Err(err).Str("channel", channel).Msg("feed connection lost")
				return
			}
			f.logger.Debug().Str("channel", channel).Msg("change notification received")
			onChange()
		}
	}()

	f.logger.Info().Str("channel", channel).Msg("subscribed to change feed")

	return sub, nil
}

// postgresSubscription cancels the notification loop on unsubscribe.
type postgresSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

// Unsubscribe stops the notification loop and releases the connection.
func (s *postgresSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

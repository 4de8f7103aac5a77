package dropcopy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	_ "modernc.org/sqlite"
)

// Store is the drop copy outbox. Every sent message is appended once and
// stays unpublished until the publisher has written it to Kafka.
type Store struct {
	db *sql.DB
}

// OutboxEvent represents an event waiting to be published
type OutboxEvent struct {
	ID                  int64
	EventID             string
	Session             string
	MsgType             string
	Topic               string
	Key                 string
	PayloadJSON         string
	CreatedUnixMillis   int64
	PublishedUnixMillis sql.NullInt64
}

// Open creates or opens the outbox database
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; the acceptor appends from many session goroutines
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			session TEXT NOT NULL,
			msg_type TEXT NOT NULL,
			topic TEXT NOT NULL,
			key TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			created_unix_millis INTEGER NOT NULL,
			published_unix_millis INTEGER NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_unpublished
			ON outbox_events(published_unix_millis)
			WHERE published_unix_millis IS NULL`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// Append stores a drop copy for publishing and stamps m.Seq with its outbox
// row id, so seq follows append order without gaps. It reports false when an
// event with the same id is already in the outbox.
func (s *Store) Append(ctx context.Context, m msg.DropCopyMsg) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO outbox_events (event_id, session, msg_type, topic, key, payload_json, created_unix_millis, published_unix_millis)
		 VALUES (?, ?, ?, ?, ?, '', ?, NULL)`,
		m.EventID, m.Session, m.MsgType, msg.TopicDropCopy, m.Key(), m.TsUnixMillis,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert outbox event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to read outbox id: %w", err)
	}
	m.Seq = id

	payload, err := json.Marshal(m)
	if err != nil {
		return false, fmt.Errorf("failed to marshal drop copy: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE outbox_events SET payload_json = ? WHERE id = ?",
		string(payload), id,
	); err != nil {
		return false, fmt.Errorf("failed to write outbox payload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit append: %w", err)
	}
	return true, nil
}

// ListUnpublished returns unpublished outbox events in append order
func (s *Store) ListUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, session, msg_type, topic, key, payload_json, created_unix_millis, published_unix_millis
		 FROM outbox_events
		 WHERE published_unix_millis IS NULL
		 ORDER BY id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpublished events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		err := rows.Scan(
			&e.ID, &e.EventID, &e.Session, &e.MsgType, &e.Topic, &e.Key,
			&e.PayloadJSON, &e.CreatedUnixMillis, &e.PublishedUnixMillis,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// MarkPublished marks an event as published
func (s *Store) MarkPublished(ctx context.Context, eventID string, nowMillis int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE outbox_events SET published_unix_millis = ? WHERE event_id = ?",
		nowMillis, eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

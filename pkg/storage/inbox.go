package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
)

var (
	ErrNotFound = errors.New("not found")
)

// DefaultInboxTTL is how long an unacknowledged message is kept
const DefaultInboxTTL = 7 * 24 * time.Hour

// InboxMessage is a business frame waiting for the application
type InboxMessage struct {
	ID         int64
	Sign       int64
	Type       uint16
	Payload    []byte
	ReceivedAt int64 // Unix seconds
	ExpiresAt  int64 // Unix seconds
}

// Inbox persists business frames received from the server until the
// application acknowledges them
type Inbox struct {
	db    *sql.DB
	ttl   time.Duration
	clock clock.Clock
	log   *logrus.Entry

	stopOnce sync.Once
	stop     chan struct{}
}

// OpenInbox opens or creates the inbox at dbPath.
// ttl: Time-to-live for queued messages (default: DefaultInboxTTL)
func OpenInbox(dbPath string, ttl time.Duration, clk clock.Clock) (*Inbox, error) {
	if ttl == 0 {
		ttl = DefaultInboxTTL
	}
	if clk == nil {
		clk = clock.New()
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	inbox := &Inbox{
		db:    db,
		ttl:   ttl,
		clock: clk,
		log:   logrus.WithField("scope", "inbox"),
		stop:  make(chan struct{}),
	}

	if err := inbox.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	// Start background cleanup goroutine
	go inbox.cleanupLoop()

	return inbox, nil
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	return db, nil
}

// initSchema creates the database schema
func (q *Inbox) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS inbox (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sign INTEGER UNIQUE NOT NULL,
		msg_type INTEGER NOT NULL,
		payload BLOB NOT NULL,
		received_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	-- Index for expiration cleanup
	CREATE INDEX IF NOT EXISTS idx_inbox_expires ON inbox(expires_at);
	`

	if _, err := q.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create inbox schema: %w", err)
	}

	return nil
}

// Enqueue stores frame. A frame whose sign is already stored is ignored, so
// server redeliveries do not duplicate.
func (q *Inbox) Enqueue(frame *protocol.Frame) error {
	now := q.clock.Now().Unix()
	expiresAt := now + int64(q.ttl.Seconds())

	payload := frame.Payload
	if payload == nil {
		payload = []byte{}
	}

	query := `
		INSERT OR IGNORE INTO inbox (sign, msg_type, payload, received_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := q.db.Exec(query, frame.Sign(), frame.Type(), payload, now, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		q.log.Debugf("Duplicate sign %d ignored", frame.Sign())
		return nil
	}

	q.log.Debugf("📬 Queued %s sign=%d (expires in %v)", protocol.TypeName(frame.Type()), frame.Sign(), q.ttl)
	return nil
}

// Pending returns unexpired messages oldest first. limit <= 0 means all.
func (q *Inbox) Pending(limit int) ([]*InboxMessage, error) {
	query := `
		SELECT id, sign, msg_type, payload, received_at, expires_at
		FROM inbox
		WHERE expires_at > ?
		ORDER BY id ASC
	`
	args := []interface{}{q.clock.Now().Unix()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending messages: %w", err)
	}
	defer rows.Close()

	var messages []*InboxMessage
	for rows.Next() {
		msg := &InboxMessage{}
		if err := rows.Scan(&msg.ID, &msg.Sign, &msg.Type, &msg.Payload, &msg.ReceivedAt, &msg.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// Ack removes a message once the application has handled it
func (q *Inbox) Ack(id int64) error {
	result, err := q.db.Exec(`DELETE FROM inbox WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to ack message: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of unexpired messages
func (q *Inbox) Count() (int, error) {
	var count int
	err := q.db.QueryRow(`SELECT COUNT(*) FROM inbox WHERE expires_at > ?`, q.clock.Now().Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// CleanupExpired deletes expired messages and returns how many went
func (q *Inbox) CleanupExpired() (int64, error) {
	result, err := q.db.Exec(`DELETE FROM inbox WHERE expires_at <= ?`, q.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired messages: %w", err)
	}

	count, _ := result.RowsAffected()
	if count > 0 {
		q.log.Infof("🧹 Cleaned up %d expired messages", count)
	}
	return count, nil
}

// cleanupLoop periodically removes expired messages
func (q *Inbox) cleanupLoop() {
	ticker := q.clock.Ticker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-ticker.C:
			if _, err := q.CleanupExpired(); err != nil {
				q.log.Warn(err)
			}
		}
	}
}

// Close stops cleanup and closes the database
func (q *Inbox) Close() error {
	q.stopOnce.Do(func() { close(q.stop) })
	return q.db.Close()
}

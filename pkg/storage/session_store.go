package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/crypto"
	"github.com/ZentaChain/zentalk-session/pkg/session"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
)

// SessionStore keeps the last signed-in session encrypted at rest
type SessionStore struct {
	db            *sql.DB
	encryptionKey []byte // Derived from the store password
	log           *logrus.Entry

	listener *session.ChangeListener
}

// OpenSessionStore opens or creates the store at dbPath
func OpenSessionStore(dbPath, password string) (*SessionStore, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	store := &SessionStore{
		db:            db,
		encryptionKey: crypto.DeriveStoreKey(password),
		log:           logrus.WithField("scope", "session_store"),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SessionStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token BLOB NOT NULL,
		token_fingerprint TEXT NOT NULL,
		address TEXT NOT NULL,
		aes_key BLOB,
		saved_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create session schema: %w", err)
	}
	return nil
}

// Save replaces the stored session
func (s *SessionStore) Save(sess *session.Session) error {
	token, err := crypto.SealGCM([]byte(sess.Token()), s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	var aesKey []byte
	if sess.HasKey() {
		aesKey, err = crypto.SealGCM([]byte(sess.AESKey()), s.encryptionKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt session key: %w", err)
		}
	}

	query := `
		INSERT OR REPLACE INTO session (id, token, token_fingerprint, address, aes_key)
		VALUES (1, ?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, token, sess.Fingerprint(), sess.Address(), aesKey); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.log.Debugf("Saved %s", sess)
	return nil
}

// Load returns the stored session, ErrNotFound when there is none
func (s *SessionStore) Load() (*session.Session, error) {
	var token, aesKey []byte
	var address string

	err := s.db.QueryRow(`SELECT token, address, aes_key FROM session WHERE id = 1`).Scan(&token, &address, &aesKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	plainToken, err := crypto.OpenGCM(token, s.encryptionKey)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	var plainKey []byte
	if len(aesKey) > 0 {
		plainKey, err = crypto.OpenGCM(aesKey, s.encryptionKey)
		if err != nil {
			return nil, ErrInvalidPassword
		}
	}

	return session.New(string(plainToken), address, string(plainKey))
}

// Fingerprint returns the stored token's fingerprint without decrypting it
func (s *SessionStore) Fingerprint() (string, error) {
	var fp string
	err := s.db.QueryRow(`SELECT token_fingerprint FROM session WHERE id = 1`).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return fp, err
}

// Clear deletes the stored session
func (s *SessionStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Attach keeps the store in step with h: replacements are saved, clears
// delete the stored session
func (s *SessionStore) Attach(h *session.Holder) {
	s.listener = session.NewChangeListener(func(_, next *session.Session) {
		var err error
		if next == nil {
			err = s.Clear()
		} else {
			err = s.Save(next)
		}
		if err != nil {
			s.log.Errorf("⚠️  Failed to persist session change: %v", err)
		}
	})
	h.Changes().Register(s.listener)
}

// Close closes the database connection
func (s *SessionStore) Close() error {
	return s.db.Close()
}

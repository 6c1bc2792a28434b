package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ashwink/warranty-agent/internal/llm"
)

// OpenCheckpointDB opens the on-disk checkpoint database with WAL enabled.
func OpenCheckpointDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open checkpoint database: %w", err)
	}
	return db, nil
}

// CheckpointStore persists sessions in SQLite so conversations survive a
// restart. Sessions are written whole at turn boundaries and loaded whole
// at startup.
type CheckpointStore struct {
	db *sql.DB
}

// NewCheckpointStore creates a checkpoint store, running migrations on
// first use. The caller owns the database handle.
func NewCheckpointStore(db *sql.DB) (*CheckpointStore, error) {
	s := &CheckpointStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate checkpoints: %w", err)
	}
	return s, nil
}

func (s *CheckpointStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			user_id    INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS session_messages (
			id           TEXT PRIMARY KEY,
			session_id   TEXT NOT NULL,
			seq          INTEGER NOT NULL,
			role         TEXT NOT NULL,
			content      TEXT NOT NULL,
			tool_calls   TEXT,
			tool_call_id TEXT,
			tool_err     BOOLEAN DEFAULT FALSE,
			usage        INTEGER DEFAULT 0,
			timestamp    TIMESTAMP NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_session_messages ON session_messages(session_id, seq);
	`)
	return err
}

// SaveSession writes a session checkpoint, replacing any previous one.
func (s *CheckpointStore) SaveSession(sess *Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin checkpoint: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, sess.ID, sess.UserID, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM session_messages WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear session messages: %w", err)
	}

	for i, m := range sess.Messages {
		var toolCalls []byte
		if len(m.ToolCalls) > 0 {
			toolCalls, err = json.Marshal(m.ToolCalls)
			if err != nil {
				return fmt.Errorf("marshal tool calls: %w", err)
			}
		}
		_, err = tx.Exec(`
			INSERT INTO session_messages
				(id, session_id, seq, role, content, tool_calls, tool_call_id, tool_err, usage, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, sess.ID, i, m.Role, m.Content, nullable(toolCalls), m.ToolCallID, m.ToolErr, m.Usage, m.Timestamp)
		if err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadSessions reads every checkpointed session, messages in order.
func (s *CheckpointStore) LoadSessions() ([]*Session, error) {
	rows, err := s.db.Query(`SELECT id, user_id, created_at, updated_at FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sess := range sessions {
		msgs, err := s.loadMessages(sess.ID)
		if err != nil {
			return nil, err
		}
		sess.Messages = msgs
	}
	return sessions, nil
}

func (s *CheckpointStore) loadMessages(sessionID string) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT id, role, content, tool_calls, tool_call_id, tool_err, usage, timestamp
		FROM session_messages
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var toolCalls sql.NullString
		var ts time.Time
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &toolCalls, &m.ToolCallID, &m.ToolErr, &m.Usage, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp = ts
		if toolCalls.Valid && toolCalls.String != "" {
			var calls []llm.ToolCall
			if err := json.Unmarshal([]byte(toolCalls.String), &calls); err != nil {
				return nil, fmt.Errorf("unmarshal tool calls: %w", err)
			}
			m.ToolCalls = calls
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Close closes the underlying database handle.
func (s *CheckpointStore) Close() error {
	return s.db.Close()
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// Package storage persists conversations, project summaries and per-request
// modification summaries in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	schemaVersion = 1
	// fixed width so stored timestamps sort lexically
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store is the SQLite-backed project store.
type Store struct {
	conn   *sql.DB
	dbPath string
}

var _ contracts.IProjectStore = (*Store)(nil)

// Conversation groups the messages of one project chat.
type Conversation struct {
	ID        string
	ProjectID string
	Title     string
	CreatedAt time.Time
}

type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{conn: conn, dbPath: dbPath}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logrus.WithField("path", dbPath).Debug("opened project store")
	return store, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			summary TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_conversations_project ON conversations(project_id);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);

		CREATE TABLE IF NOT EXISTS modification_summaries (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			prompt TEXT NOT NULL,
			scope TEXT NOT NULL,
			approach TEXT NOT NULL,
			success INTEGER NOT NULL,
			modified_files TEXT NOT NULL,
			added_files TEXT NOT NULL,
			summary TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_summaries_project ON modification_summaries(project_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, schemaVersion)
	return err
}

func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// SaveModificationSummary inserts one request summary, assigning an ID and
// timestamp when missing.
func (s *Store) SaveModificationSummary(ctx context.Context, summary *models.ModificationSummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}
	modified, err := json.Marshal(nonNil(summary.ModifiedFiles))
	if err != nil {
		return fmt.Errorf("failed to encode modified files: %w", err)
	}
	added, err := json.Marshal(nonNil(summary.AddedFiles))
	if err != nil {
		return fmt.Errorf("failed to encode added files: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO modification_summaries
			(id, session_id, project_id, prompt, scope, approach, success, modified_files, added_files, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.SessionID, summary.ProjectID, summary.Prompt, string(summary.Scope), summary.Approach,
		boolToInt(summary.Success), string(modified), string(added), summary.Summary, summary.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save modification summary: %w", err)
	}
	return nil
}

// ListModificationSummaries returns a project's summaries, newest first.
func (s *Store) ListModificationSummaries(ctx context.Context, projectID string, limit int) ([]models.ModificationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, session_id, project_id, prompt, scope, approach, success, modified_files, added_files, summary, created_at
		FROM modification_summaries
		WHERE project_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query modification summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.ModificationSummary
	for rows.Next() {
		var m models.ModificationSummary
		var scope, modified, added, createdAt string
		var success int
		if err := rows.Scan(&m.ID, &m.SessionID, &m.ProjectID, &m.Prompt, &scope, &m.Approach, &success, &modified, &added, &m.Summary, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan modification summary: %w", err)
		}
		m.Scope = models.ScopeKind(scope)
		m.Success = success != 0
		_ = json.Unmarshal([]byte(modified), &m.ModifiedFiles)
		_ = json.Unmarshal([]byte(added), &m.AddedFiles)
		m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		summaries = append(summaries, m)
	}
	return summaries, rows.Err()
}

// GetProjectSummary returns the accumulated summary, or "" for an unknown project.
func (s *Store) GetProjectSummary(ctx context.Context, projectID string) (string, error) {
	var summary string
	err := s.conn.QueryRowContext(ctx, `SELECT summary FROM projects WHERE id = ?`, projectID).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read project summary: %w", err)
	}
	return summary, nil
}

func (s *Store) SaveProjectSummary(ctx context.Context, projectID, summary string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO projects (id, summary, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET summary = excluded.summary, updated_at = excluded.updated_at`,
		projectID, summary, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save project summary: %w", err)
	}
	return nil
}

// CreateConversation starts a conversation for a project.
func (s *Store) CreateConversation(ctx context.Context, projectID, title string) (*Conversation, error) {
	c := &Conversation{ID: uuid.NewString(), ProjectID: projectID, Title: title, CreatedAt: time.Now().UTC()}
	_, err := s.conn.ExecContext(ctx, `INSERT INTO conversations (id, project_id, title, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.ProjectID, c.Title, c.CreatedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return c, nil
}

func (s *Store) AddMessage(ctx context.Context, conversationID, role, content string) (*Message, error) {
	m := &Message{ID: uuid.NewString(), ConversationID: conversationID, Role: role, Content: content, CreatedAt: time.Now().UTC()}
	_, err := s.conn.ExecContext(ctx, `INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.Role, m.Content, m.CreatedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to add message: %w", err)
	}
	return m, nil
}

// Messages returns a conversation in chronological order.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at FROM messages
		WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ConversationContext renders the last limit messages as "role: content" lines.
func (s *Store) ConversationContext(ctx context.Context, conversationID string, limit int) (string, error) {
	messages, err := s.Messages(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String(), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

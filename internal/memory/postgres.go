package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ConnectionConfig holds Postgres connection pool configuration.
type ConnectionConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "twin",
		Password:        "twin",
		Database:        "twin",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// PostgresStore persists conversation turns in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a pooled connection and verifies it with a ping.
func NewPostgresStore(config *ConnectionConfig) (*PostgresStore, error) {
	if config == nil {
		config = DefaultConnectionConfig()
	}

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// DB returns the underlying sql.DB, used by the migration manager.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// AppendTurn records a turn and evicts rows beyond the per-session cap.
func (s *PostgresStore) AppendTurn(ctx context.Context, turn Turn) error {
	insert := `
		INSERT INTO conversation_turns (session_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.db.ExecContext(ctx, insert,
		turn.SessionID, turn.UserID, turn.Role, turn.Content, turn.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	trim := `
		DELETE FROM conversation_turns
		WHERE session_id = $1
			AND id NOT IN (
				SELECT id FROM conversation_turns
				WHERE session_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2
			)`

	if _, err := s.db.ExecContext(ctx, trim, turn.SessionID, maxStoredTurns); err != nil {
		return fmt.Errorf("failed to trim turns: %w", err)
	}

	return nil
}

// RecentTurns returns up to limit most recent turns for a session, oldest
// first. A non-positive limit falls back to the per-session cap.
func (s *PostgresStore) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = maxStoredTurns
	}

	query := `
		SELECT session_id, user_id, role, content, created_at
		FROM (
			SELECT id, session_id, user_id, role, content, created_at
			FROM conversation_turns
			WHERE session_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.SessionID, &t.UserID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turn rows: %w", err)
	}

	return turns, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

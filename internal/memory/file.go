package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps conversation turns in a single JSON file. Every append
// rewrites the whole file through a temp file plus rename.
type FileStore struct {
	path     string
	mu       sync.Mutex
	sessions map[string][]Turn
}

// NewFileStore opens (or creates) the store at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path:     path,
		sessions: make(map[string][]Turn),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read memory file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &fs.sessions); err != nil {
			// Corrupt memory starts fresh, same as a missing file.
			fs.sessions = make(map[string][]Turn)
		}
	}

	return fs, nil
}

// AppendTurn records a turn, keeping only the most recent turns per session.
func (fs *FileStore) AppendTurn(ctx context.Context, turn Turn) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	turns := append(fs.sessions[turn.SessionID], turn)
	if len(turns) > maxStoredTurns {
		turns = turns[len(turns)-maxStoredTurns:]
	}
	fs.sessions[turn.SessionID] = turns

	return fs.flushLocked()
}

// RecentTurns returns up to limit most recent turns for a session, oldest
// first. A non-positive limit falls back to the per-session cap.
func (fs *FileStore) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if limit <= 0 {
		limit = maxStoredTurns
	}

	turns := fs.sessions[sessionID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Close flushes the store.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.flushLocked()
}

func (fs *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(fs.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("failed to create memory directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write memory file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace memory file: %w", err)
	}
	return nil
}

// Package history persists finished hands. The game never reads a record
// back during play; stores are write-mostly and failures must never stall a
// table, so callers log and move on.
package history

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// ActionRecord is one betting action on the hand tape.
type ActionRecord struct {
	Seq      int    `json:"seq"`
	Street   string `json:"street"`
	Seat     int    `json:"seat"`
	PlayerID uint64 `json:"playerId"`
	Action   string `json:"action"`
	Raise    int64  `json:"raise,omitempty"`
	Auto     bool   `json:"auto,omitempty"`
}

type WinnerRecord struct {
	PlayerID uint64 `json:"playerId"`
	Winnings int64  `json:"winnings"`
	Type     string `json:"type"`
}

// HandRecord is the opaque unit of persistence: one completed hand.
type HandRecord struct {
	HandID  string
	GameID  string
	Round   int
	Board   []string
	Actions []ActionRecord
	Winners []WinnerRecord
	EndedAt time.Time
}

type Store interface {
	SaveHand(ctx context.Context, rec HandRecord) error
	ListRecent(ctx context.Context, gameID string, limit int) ([]HandRecord, error)
	Close() error
}

const defaultListLimit = 50

// NewStoreFromEnv picks a backend from HISTORY_MODE: "memory" (default),
// "sqlite" (HISTORY_SQLITE_PATH) or "postgres" (HISTORY_DATABASE_URL).
// Returns the store and the mode that was actually selected.
func NewStoreFromEnv() (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("HISTORY_MODE")))
	switch mode {
	case "", "memory":
		return NewMemoryStore(), "memory", nil
	case "local", "sqlite":
		s, err := NewSQLiteStore(sqlitePathFromEnv())
		if err != nil {
			return nil, "", err
		}
		return s, "sqlite", nil
	case "postgres":
		s, err := NewPostgresStore(os.Getenv("HISTORY_DATABASE_URL"))
		if err != nil {
			return nil, "", err
		}
		return s, "postgres", nil
	default:
		return nil, "", fmt.Errorf("unknown HISTORY_MODE %q", mode)
	}
}

// MemoryStore keeps records in process. Used in tests and as the default
// when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	hands map[string]HandRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hands: make(map[string]HandRecord)}
}

func (m *MemoryStore) SaveHand(_ context.Context, rec HandRecord) error {
	if strings.TrimSpace(rec.HandID) == "" {
		return fmt.Errorf("empty hand id")
	}
	m.mu.Lock()
	m.hands[rec.HandID] = rec
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListRecent(_ context.Context, gameID string, limit int) ([]HandRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	m.mu.RLock()
	out := make([]HandRecord, 0, len(m.hands))
	for _, rec := range m.hands {
		if rec.GameID == gameID {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

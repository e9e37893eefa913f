// Package lobby is the registry of running games. Every table lookup goes
// through the Lobby's mutex; nothing else holds a table map.
package lobby

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pokerhall/apps/server/internal/history"
	"pokerhall/apps/server/internal/table"
)

const reapInterval = time.Minute

// Lobby owns all table actors, keyed by opaque game ID.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table

	defaultConfig table.Config
	store         history.Store
	idleTTL       time.Duration
	done          chan struct{}
	stopOnce      sync.Once
}

// New creates a lobby with the given default table config. The history store
// is shared by every table the lobby creates.
func New(cfg table.Config, store history.Store, idleTTL time.Duration) *Lobby {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	l := &Lobby{
		tables:        make(map[string]*table.Table),
		defaultConfig: cfg,
		store:         store,
		idleTTL:       idleTTL,
		done:          make(chan struct{}),
	}
	go l.reapLoop()
	return l
}

// QuickStart finds a game still gathering players, or creates one.
func (l *Lobby) QuickStart(userID uint64, broadcastFn func(userID uint64, data []byte)) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, t := range l.tables {
		if t.IsClosed() || t.Started() {
			continue
		}
		if t.Seats() < l.defaultConfig.MaxPlayers {
			log.Printf("[Lobby] QuickStart: user %d joining game %s", userID, t.ID)
			return t, nil
		}
	}

	gameID := uuid.NewString()
	t := table.New(gameID, l.defaultConfig, broadcastFn, l.store)
	l.tables[gameID] = t
	log.Printf("[Lobby] QuickStart: user %d created game %s", userID, gameID)
	return t, nil
}

// GetTable returns a table by game ID, or nil.
func (l *Lobby) GetTable(gameID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[gameID]
}

// ListGames returns all live game IDs.
func (l *Lobby) ListGames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.tables))
	for id, t := range l.tables {
		if !t.IsClosed() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (l *Lobby) reapLoop() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.reap()
		case <-l.done:
			return
		}
	}
}

func (l *Lobby) reap() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.tables {
		if t.IsClosed() || t.IsIdleFor(l.idleTTL) {
			t.Stop()
			delete(l.tables, id)
			log.Printf("[Lobby] Reaped idle game %s", id)
		}
	}
}

// Stop closes every table and the reaper.
func (l *Lobby) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.tables {
		t.Stop()
		delete(l.tables, id)
	}
}

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultSQLitePath = "pokerhall.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS hand_history (
    hand_id     TEXT PRIMARY KEY,
    game_id     TEXT NOT NULL,
    round       INTEGER NOT NULL,
    board       TEXT NOT NULL,
    actions     TEXT NOT NULL,
    winners     TEXT NOT NULL,
    ended_at_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hand_history_game
    ON hand_history (game_id, ended_at_ms DESC);
`

type SQLiteStore struct {
	db *sql.DB
}

func sqlitePathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv("HISTORY_SQLITE_PATH")); p != "" {
		return p
	}
	return defaultSQLitePath
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is happiest with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveHand(ctx context.Context, rec HandRecord) error {
	if strings.TrimSpace(rec.HandID) == "" {
		return fmt.Errorf("empty hand id")
	}
	board, actions, winners, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO hand_history (hand_id, game_id, round, board, actions, winners, ended_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (hand_id) DO NOTHING`,
		rec.HandID, rec.GameID, rec.Round, board, actions, winners, rec.EndedAt.UnixMilli())
	return err
}

func (s *SQLiteStore) ListRecent(ctx context.Context, gameID string, limit int) ([]HandRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT hand_id, game_id, round, board, actions, winners, ended_at_ms
FROM hand_history
WHERE game_id = ?
ORDER BY ended_at_ms DESC
LIMIT ?`, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HandRecord, 0, limit)
	for rows.Next() {
		var rec HandRecord
		var board, actions, winners string
		var endedMs int64
		if err := rows.Scan(&rec.HandID, &rec.GameID, &rec.Round, &board, &actions, &winners, &endedMs); err != nil {
			return nil, err
		}
		if err := decodeRecord(&rec, board, actions, winners, endedMs); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func encodeRecord(rec HandRecord) (board, actions, winners string, err error) {
	b, err := json.Marshal(rec.Board)
	if err != nil {
		return "", "", "", err
	}
	a, err := json.Marshal(rec.Actions)
	if err != nil {
		return "", "", "", err
	}
	w, err := json.Marshal(rec.Winners)
	if err != nil {
		return "", "", "", err
	}
	return string(b), string(a), string(w), nil
}

func decodeRecord(rec *HandRecord, board, actions, winners string, endedMs int64) error {
	if err := json.Unmarshal([]byte(board), &rec.Board); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(actions), &rec.Actions); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(winners), &rec.Winners); err != nil {
		return err
	}
	rec.EndedAt = time.UnixMilli(endedMs).UTC()
	return nil
}

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS hand_history (
    hand_id     TEXT PRIMARY KEY,
    game_id     TEXT NOT NULL,
    round       INTEGER NOT NULL,
    board       JSONB NOT NULL,
    actions     JSONB NOT NULL,
    winners     JSONB NOT NULL,
    ended_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hand_history_game
    ON hand_history (game_id, ended_at DESC);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty HISTORY_DATABASE_URL")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveHand(ctx context.Context, rec HandRecord) error {
	if strings.TrimSpace(rec.HandID) == "" {
		return fmt.Errorf("empty hand id")
	}
	board, actions, winners, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO hand_history (hand_id, game_id, round, board, actions, winners, ended_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (hand_id) DO NOTHING`,
		rec.HandID, rec.GameID, rec.Round, board, actions, winners, rec.EndedAt.UTC())
	return err
}

func (s *PostgresStore) ListRecent(ctx context.Context, gameID string, limit int) ([]HandRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
SELECT hand_id, game_id, round, board, actions, winners, ended_at
FROM hand_history
WHERE game_id = $1
ORDER BY ended_at DESC
LIMIT $2`, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HandRecord, 0, limit)
	for rows.Next() {
		var rec HandRecord
		var board, actions, winners []byte
		var endedAt time.Time
		if err := rows.Scan(&rec.HandID, &rec.GameID, &rec.Round, &board, &actions, &winners, &endedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(board, &rec.Board); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actions, &rec.Actions); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(winners, &rec.Winners); err != nil {
			return nil, err
		}
		rec.EndedAt = endedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

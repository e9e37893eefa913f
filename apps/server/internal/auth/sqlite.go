package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const defaultAuthDBPath = "pokerhall_auth.db"

const authSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash BLOB NOT NULL,
    created_at_ms INTEGER NOT NULL,
    last_login_ms INTEGER NOT NULL
);
`

type sqliteSession struct {
	UserID    uint64
	Username  string
	ExpiresAt time.Time
}

// SQLiteService persists accounts; session tokens stay in memory and die
// with the process.
type SQLiteService struct {
	db *sql.DB

	mu       sync.Mutex
	sessions map[string]sqliteSession
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		dbPath = defaultAuthDBPath
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
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, authSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteService{
		db:       db,
		sessions: make(map[string]sqliteSession),
	}, nil
}

func (s *SQLiteService) Register(username, password string) (uint64, string, error) {
	if err := validateUsername(username); err != nil {
		return 0, "", err
	}
	if err := validatePassword(password); err != nil {
		return 0, "", err
	}
	name := normalizeUsername(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO accounts (username, password_hash, created_at_ms, last_login_ms)
VALUES (?, ?, ?, ?)`,
		name, hash, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, "", ErrUsernameTaken
		}
		return 0, "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	if id <= 0 {
		return 0, "", fmt.Errorf("bad account id %d", id)
	}
	userID := uint64(id)
	return userID, s.issue(userID, name, now), nil
}

func (s *SQLiteService) Login(username, password string) (uint64, string, error) {
	name := normalizeUsername(username)
	if name == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var id int64
	var hash []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM accounts WHERE username = ?`, name).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrInvalidCredentials
	}
	if err != nil {
		return 0, "", err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}

	now := time.Now()
	_, _ = s.db.ExecContext(ctx,
		`UPDATE accounts SET last_login_ms = ? WHERE id = ?`, now.UnixMilli(), id)
	userID := uint64(id)
	return userID, s.issue(userID, name, now), nil
}

func (s *SQLiteService) ResolveSession(token string) (uint64, string, bool) {
	if token == "" {
		return 0, "", false
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, exists := s.sessions[token]
	if !exists {
		return 0, "", false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(s.sessions, token)
		return 0, "", false
	}
	rec.ExpiresAt = now.Add(sessionTTL)
	s.sessions[token] = rec
	return rec.UserID, rec.Username, true
}

func (s *SQLiteService) Logout(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) issue(userID uint64, username string, now time.Time) string {
	token := newToken()
	s.mu.Lock()
	s.sessions[token] = sqliteSession{
		UserID:    userID,
		Username:  username,
		ExpiresAt: now.Add(sessionTTL),
	}
	s.mu.Unlock()
	return token
}

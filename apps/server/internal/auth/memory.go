package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTTL = 30 * 24 * time.Hour
	tokenBytes = 32
)

type session struct {
	UserID    uint64
	ExpiresAt time.Time
}

type account struct {
	UserID       uint64
	Username     string
	PasswordHash []byte
	LastLogin    time.Time
}

// Manager keeps accounts and sessions in process. The default for local play
// and the session layer shared with the sqlite backend.
type Manager struct {
	mu sync.Mutex

	nextUserID uint64
	sessions   map[string]session
	byID       map[uint64]*account
	byName     map[string]uint64
}

func NewManager() *Manager {
	return &Manager{
		nextUserID: 100000, // readable non-trivial range
		sessions:   make(map[string]session),
		byID:       make(map[uint64]*account),
		byName:     make(map[string]uint64),
	}
}

func (m *Manager) Register(username, password string) (uint64, string, error) {
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

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byName[name]; exists {
		return 0, "", ErrUsernameTaken
	}
	m.nextUserID++
	now := time.Now()
	acct := &account{UserID: m.nextUserID, Username: name, PasswordHash: hash, LastLogin: now}
	m.byID[acct.UserID] = acct
	m.byName[name] = acct.UserID
	return acct.UserID, m.issueLocked(acct.UserID, now), nil
}

func (m *Manager) Login(username, password string) (uint64, string, error) {
	name := normalizeUsername(username)
	if name == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	userID, exists := m.byName[name]
	if !exists {
		return 0, "", ErrInvalidCredentials
	}
	acct := m.byID[userID]
	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}
	now := time.Now()
	acct.LastLogin = now
	return userID, m.issueLocked(userID, now), nil
}

func (m *Manager) ResolveSession(token string) (uint64, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveLocked(token, time.Now())
}

func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

func (m *Manager) Close() error { return nil }

func (m *Manager) issueLocked(userID uint64, now time.Time) string {
	token := newToken()
	m.sessions[token] = session{UserID: userID, ExpiresAt: now.Add(sessionTTL)}
	return token
}

// resolveLocked refreshes the TTL on every successful lookup.
func (m *Manager) resolveLocked(token string, now time.Time) (uint64, string, bool) {
	if token == "" {
		return 0, "", false
	}
	rec, exists := m.sessions[token]
	if !exists {
		return 0, "", false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(m.sessions, token)
		return 0, "", false
	}
	rec.ExpiresAt = now.Add(sessionTTL)
	m.sessions[token] = rec

	username := ""
	if acct := m.byID[rec.UserID]; acct != nil {
		username = acct.Username
	}
	return rec.UserID, username, true
}

func newToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

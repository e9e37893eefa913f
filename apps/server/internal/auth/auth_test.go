package auth

import (
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	m := NewManager()

	userID, token, err := m.Register("alice_01", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if userID == 0 || token == "" {
		t.Fatalf("expected account id and token, got %d %q", userID, token)
	}

	resolvedID, username, ok := m.ResolveSession(token)
	if !ok {
		t.Fatalf("expected valid session")
	}
	if resolvedID != userID || username != "alice_01" {
		t.Fatalf("session resolved to %d %q", resolvedID, username)
	}

	loginID, loginToken, err := m.Login("alice_01", "secret12")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loginID != userID || loginToken == "" {
		t.Fatalf("login resolved to %d %q", loginID, loginToken)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("alice_01", "secret12"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	// usernames are case-insensitive
	if _, _, err := m.Register("Alice_01", "secret12"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("alice_01", "secret12"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := m.Login("alice_01", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	m := NewManager()
	_, token, err := m.Register("alice_01", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	m.Logout(token)
	if _, _, ok := m.ResolveSession(token); ok {
		t.Fatalf("expected logged out token to be invalid")
	}
}

func TestSQLiteService_RoundTrip(t *testing.T) {
	s, err := NewSQLiteService(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteService: %v", err)
	}
	defer s.Close()

	userID, token, err := s.Register("bob_02", "hunter22")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := s.Register("bob_02", "hunter22"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	resolvedID, username, ok := s.ResolveSession(token)
	if !ok || resolvedID != userID || username != "bob_02" {
		t.Fatalf("session resolved to %d %q ok=%v", resolvedID, username, ok)
	}

	loginID, _, err := s.Login("bob_02", "hunter22")
	if err != nil || loginID != userID {
		t.Fatalf("login got %d, %v", loginID, err)
	}
	if _, _, err := s.Login("bob_02", "nope-nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

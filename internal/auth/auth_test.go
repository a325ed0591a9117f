package auth

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE admin_users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	service, err := NewService(db, "test-secret")
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func TestSetAdminAndValidateCredentials(t *testing.T) {
	service := newTestService(t)

	if service.HasAdmin() {
		t.Fatal("fresh database should have no admin")
	}

	if err := service.SetAdmin("admin", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("empty password: got %v, want ErrPasswordRequired", err)
	}

	if err := service.SetAdmin("admin", "hunter2"); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
	if !service.HasAdmin() {
		t.Error("HasAdmin should report true after setup")
	}

	if err := service.ValidateCredentials("admin", "hunter2"); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}
	if err := service.ValidateCredentials("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if err := service.ValidateCredentials("nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestSetAdminUpdatesPassword(t *testing.T) {
	service := newTestService(t)

	if err := service.SetAdmin("admin", "first"); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
	if err := service.SetAdmin("admin", "second"); err != nil {
		t.Fatalf("SetAdmin update failed: %v", err)
	}

	if err := service.ValidateCredentials("admin", "first"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}
	if err := service.ValidateCredentials("admin", "second"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	service := newTestService(t)

	token, err := service.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("Username = %q, want admin", claims.Username)
	}

	if _, err := service.ValidateToken(token + "tampered"); err == nil {
		t.Error("tampered token accepted")
	}
	if _, err := service.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestTokenRejectedAcrossSecrets(t *testing.T) {
	first := newTestService(t)
	second := newTestService(t)
	second.jwtSecret = []byte("different-secret")

	token, err := first.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := second.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret accepted")
	}
}

package config

import (
	"strings"
	"testing"
)

const validKey = "01234567890123456789012345678901"

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", validKey)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Disconnect.Scope != "user" {
		t.Errorf("Disconnect.Scope = %q, want user", cfg.Disconnect.Scope)
	}
	if cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled = true, want false by default")
	}
}

func TestLoad_MissingEncryptionKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing ENCRYPTION_KEY")
	}
	if !strings.Contains(err.Error(), "ENCRYPTION_KEY") {
		t.Errorf("Load() error = %v, want mention of ENCRYPTION_KEY", err)
	}
}

func TestLoad_ShortEncryptionKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for short ENCRYPTION_KEY")
	}
}

func TestLoad_InvalidDisconnectScope(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCONNECT_SCOPE", "everything")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for invalid DISCONNECT_SCOPE")
	}
}

func TestLoad_ItemScope(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCONNECT_SCOPE", "item")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Disconnect.Scope != "item" {
		t.Errorf("Disconnect.Scope = %q, want item", cfg.Disconnect.Scope)
	}
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "svc",
		Password: "pw", DBName: "finlink", SSLMode: "require",
	}
	got := db.ConnectionString()
	want := "host=db.internal port=5433 user=svc password=pw dbname=finlink sslmode=require"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}

package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"database_url", "postgres://app:hunter2@db:5432/market",
		"password", "hunter2",
		"id", 7,
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("unexpected kv length: %d", len(out))
	}
	if got := out[1]; got != "postgres://app:xxxxx@db:5432/market" {
		t.Fatalf("dsn not masked: %v", got)
	}
	if got := out[3]; got != "[REDACTED]" {
		t.Fatalf("password not redacted: %v", got)
	}
	if got := out[5]; got != 7 {
		t.Fatalf("plain values must pass through: %v", got)
	}
}

func TestRedactDSNLeavesNonURLs(t *testing.T) {
	if got := RedactDSN("megamarket.db"); got != "megamarket.db" {
		t.Fatalf("RedactDSN: got %q", got)
	}
}

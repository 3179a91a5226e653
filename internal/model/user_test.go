package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUser_JSONHidesSecrets(t *testing.T) {
	user := &User{
		ID:           "u1",
		Email:        "a@b.com",
		PasswordHash: "$2a$10$secret",
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	s := string(data)
	if strings.Contains(s, "secret") {
		t.Errorf("password hash leaked into JSON: %s", s)
	}
	if !strings.Contains(s, `"id":"u1"`) || !strings.Contains(s, `"email":"a@b.com"`) {
		t.Errorf("expected id and email in JSON, got %s", s)
	}
}

func TestAuthToken_JSONHidesInternals(t *testing.T) {
	tok := AuthToken{
		ID:     "reg-1",
		Access: AccessAuth,
		Token:  "signed-string",
	}

	data, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if strings.Contains(string(data), "reg-1") {
		t.Errorf("registry row ID leaked into JSON: %s", data)
	}
}

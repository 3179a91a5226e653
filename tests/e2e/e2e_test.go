//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type todoResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatorID   string `json:"creatorId"`
}

type todoEnvelope struct {
	Todo todoResponse `json:"todo"`
}

type todoListResponse struct {
	Todos []todoResponse `json:"todos"`
}

type session struct {
	user  userResponse
	token string
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("TASKBOX_BASE_URL", "http://localhost:8080")
	client := &http.Client{Timeout: 10 * time.Second}

	alice := register(t, client, baseURL, uniqueEmail("alice"))
	bob := register(t, client, baseURL, uniqueEmail("bob"))

	// Alice creates a todo.
	todo := createTodo(t, client, baseURL, alice.token, "write e2e smoke test")
	if todo.CreatorID != alice.user.ID {
		t.Fatalf("creatorId = %q, want %q", todo.CreatorID, alice.user.ID)
	}

	// It shows up in her list and not in Bob's.
	if got := listTodos(t, client, baseURL, alice.token); len(got.Todos) != 1 {
		t.Fatalf("alice sees %d todos, want 1", len(got.Todos))
	}
	if got := listTodos(t, client, baseURL, bob.token); len(got.Todos) != 0 {
		t.Fatalf("bob sees %d todos, want 0", len(got.Todos))
	}

	// Bob cannot fetch, patch, or delete Alice's todo.
	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		body := ""
		if method == http.MethodPatch {
			body = `{"completed":true}`
		}
		status := doStatus(t, client, method, baseURL+"/todos/"+todo.ID, bob.token, body)
		if status != http.StatusNotFound {
			t.Errorf("%s as non-owner: status = %d, want 404", method, status)
		}
	}

	// Alice completes it; completedAt is stamped.
	patched := patchTodo(t, client, baseURL, alice.token, todo.ID, `{"completed":true}`)
	if !patched.Todo.Completed || patched.Todo.CompletedAt == nil {
		t.Fatalf("patch result completed=%v completedAt=%v", patched.Todo.Completed, patched.Todo.CompletedAt)
	}

	// A text-only patch clears the completion state.
	reset := patchTodo(t, client, baseURL, alice.token, todo.ID, `{"text":"still open"}`)
	if reset.Todo.Completed || reset.Todo.CompletedAt != nil {
		t.Fatalf("text-only patch left completed=%v completedAt=%v", reset.Todo.Completed, reset.Todo.CompletedAt)
	}

	// Logging in again issues a second independent session.
	relogin := login(t, client, baseURL, alice.user.Email)

	// Revoking the first token kills only that session.
	if status := doStatus(t, client, http.MethodDelete, baseURL+"/users/me/token", alice.token, ""); status != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", status)
	}
	if status := doStatus(t, client, http.MethodGet, baseURL+"/users/me", alice.token, ""); status != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", status)
	}
	if status := doStatus(t, client, http.MethodGet, baseURL+"/users/me", relogin.token, ""); status != http.StatusOK {
		t.Errorf("second session status = %d, want 200", status)
	}

	// Clean up what the live session can still reach.
	if status := doStatus(t, client, http.MethodDelete, baseURL+"/todos/"+todo.ID, relogin.token, ""); status != http.StatusOK {
		t.Errorf("delete todo status = %d, want 200", status)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

const e2ePassword = "password123"

func register(t *testing.T, client *http.Client, baseURL, email string) session {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, e2ePassword)
	resp, err := client.Post(baseURL+"/users", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d, want 200", resp.StatusCode)
	}

	token := resp.Header.Get("x-auth")
	if token == "" {
		t.Fatal("register response missing x-auth header")
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	return session{user: user, token: token}
}

func login(t *testing.T, client *http.Client, baseURL, email string) session {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, e2ePassword)
	resp, err := client.Post(baseURL+"/users/login", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	token := resp.Header.Get("x-auth")
	if token == "" {
		t.Fatal("login response missing x-auth header")
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	return session{user: user, token: token}
}

func createTodo(t *testing.T, client *http.Client, baseURL, token, text string) todoResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/todos", bytes.NewBufferString(fmt.Sprintf(`{"text":%q}`, text)))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-auth", token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create todo status = %d, want 200", resp.StatusCode)
	}

	var todo todoResponse
	if err := json.NewDecoder(resp.Body).Decode(&todo); err != nil {
		t.Fatalf("decode todo: %v", err)
	}
	return todo
}

func listTodos(t *testing.T, client *http.Client, baseURL, token string) todoListResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/todos", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("x-auth", token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("list todos: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list todos status = %d, want 200", resp.StatusCode)
	}

	var list todoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode todo list: %v", err)
	}
	return list
}

func patchTodo(t *testing.T, client *http.Client, baseURL, token, id, body string) todoEnvelope {
	t.Helper()

	req, err := http.NewRequest(http.MethodPatch, baseURL+"/todos/"+id, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-auth", token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("patch todo: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch todo status = %d, want 200", resp.StatusCode)
	}

	var envelope todoEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode todo envelope: %v", err)
	}
	return envelope
}

func doStatus(t *testing.T, client *http.Client, method, url, token, body string) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode
}

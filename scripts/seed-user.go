package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/taskbox/taskbox/internal/auth"
	"github.com/taskbox/taskbox/internal/repository"
	"github.com/taskbox/taskbox/internal/service"
)

type output struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Token  string   `json:"token"`
	Todos  []string `json:"todos,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		tokenSecret = flag.String("token-secret", os.Getenv("AUTH_TOKEN_SECRET"), "Session token signing secret")
		email       = flag.String("email", "dev@taskbox.local", "User email")
		password    = flag.String("password", "password123", "User password")
		todosInput  = flag.String("todos", "", "Comma-separated todo texts to seed")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *tokenSecret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_TOKEN_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	codec := auth.NewTokenCodec(*tokenSecret)
	users := service.NewUserService(repo, codec, nil)
	todos := service.NewTodoService(repo, nil)

	user, err := users.Register(ctx, *email, *password)
	if err != nil {
		// An existing account is fine for a seed script; log in instead.
		user, err = users.Authenticate(ctx, *email, *password)
		if err != nil {
			fmt.Fprintln(os.Stderr, "register or authenticate:", err)
			os.Exit(1)
		}
	}

	token, err := users.IssueToken(ctx, user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
	}

	for _, part := range strings.Split(*todosInput, ",") {
		text := strings.TrimSpace(part)
		if text == "" {
			continue
		}
		todo, err := todos.Create(ctx, user.ID, text)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create todo:", err)
			os.Exit(1)
		}
		out.Todos = append(out.Todos, todo.ID)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

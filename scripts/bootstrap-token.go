package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linkwarden/linkwarden/internal/auth"
	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/repository"
)

type output struct {
	OwnerID     string `json:"owner_id"`
	TokenID     string `json:"token_id"`
	Token       string `json:"token"`
	TokenPrefix string `json:"token_prefix"`
	Name        string `json:"name"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		ownerID     = flag.String("owner-id", "system", "Owner ID the token belongs to")
		name        = flag.String("name", "bootstrap", "Token name")
		environment = flag.String("env", auth.EnvLive, "Token environment: live or test")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	env := strings.ToLower(*environment)
	if env != auth.EnvLive && env != auth.EnvTest {
		fmt.Fprintln(os.Stderr, "invalid env; use live or test")
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

	generated, err := auth.GenerateToken(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}

	token := &model.OwnerToken{
		ID:        ulid.Make().String(),
		OwnerID:   *ownerID,
		TokenHash: generated.Hash,
		Prefix:    generated.Prefix,
		Name:      *name,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.InsertToken(ctx, token); err != nil {
		fmt.Fprintln(os.Stderr, "insert token:", err)
		os.Exit(1)
	}

	out := output{
		OwnerID:     token.OwnerID,
		TokenID:     token.ID,
		Token:       generated.Plaintext,
		TokenPrefix: token.Prefix,
		Name:        token.Name,
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

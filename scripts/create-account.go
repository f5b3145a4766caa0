package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/swaplane/exchange-server-go/internal/config"
	"github.com/swaplane/exchange-server-go/internal/database"
	"github.com/swaplane/exchange-server-go/internal/model"
	"github.com/swaplane/exchange-server-go/internal/repository"
	"github.com/swaplane/exchange-server-go/internal/util"
)

// Creates an account row and prints its API token. Accounts are provisioned
// out of band; this is the operator path until the identity service owns it.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/create-account.go <display-name>\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	token, err := util.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, err := repository.NewAccountRepository(db.DB).Create(ctx, model.CreateAccountParams{
		DisplayName:     os.Args[1],
		TokenHash:       util.HashToken(token),
		RateLimitPerMin: cfg.DefaultRateLimitMin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("account: %s\n", account.ID)
	fmt.Printf("token:   %s\n", token)
}

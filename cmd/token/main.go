// Command token prints a signed bearer token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/service"
)

func main() {
	user := flag.String("user", "", "user id to sign for (random when empty)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if config.IsProduction() {
		fmt.Fprintln(os.Stderr, "refusing to issue tokens in production")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	userID := uuid.New()
	if *user != "" {
		userID, err = uuid.Parse(*user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid user id: %v\n", err)
			os.Exit(1)
		}
	}

	token, err := service.NewAuthService(cfg.JWTSecret).GenerateToken(userID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "user %s, expires in %s\n", userID, *ttl)
	fmt.Println(token)
}

// Command devtoken prints a bearer token for local testing against the API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"budgettracker/internal/auth"
	"budgettracker/internal/config"
)

func main() {
	user := flag.String("user", "dev-user", "user identifier to put in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := flag.String("secret", "", "signing secret (default: $JWT_SECRET, .env, or the config file)")
	claim := flag.String("claim", "", "claim carrying the user identifier (default: auth.user_claim from config)")
	flag.Parse()

	if *secret == "" || *claim == "" {
		cfg, _, err := config.Load()
		switch {
		case err == nil:
			if *secret == "" {
				*secret = cfg.Auth.JWTSecret
			}
			if *claim == "" {
				*claim = cfg.Auth.UserClaim
			}
		case *secret == "":
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	token, err := auth.IssueToken(*secret, *claim, *user, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

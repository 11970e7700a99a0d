// Command devtoken prints a signed bearer token for local development.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"taskboard/internal/auth"
	"taskboard/internal/config"
)

func main() {
	userID := flag.StringP("user", "u", "", "User id (uuid) the token is issued for")
	ttl := flag.Duration("ttl", 0, "Token lifetime [default: JWT_EXPIRY_HOURS]")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if _, err := uuid.Parse(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "error: --user must be a uuid")
		os.Exit(1)
	}
	if *ttl == 0 {
		*ttl = time.Duration(cfg.JWTExpiryHours) * time.Hour
	}

	token, err := auth.GenerateToken([]byte(cfg.JWTSecret), *userID, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

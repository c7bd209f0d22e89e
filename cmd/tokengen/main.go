// Command tokengen prints a signed development token for a user id and role,
// using the jwt settings of the server configuration.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/auth"
	"github.com/taskboard/backend/pkg/utils/keygen"
)

func main() {
	configPath := pflag.StringP("config", "c", "config/config.yaml", "path to config.yaml")
	userID := pflag.UintP("user", "u", 1, "user id placed in the token subject")
	role := pflag.StringP("role", "r", string(domain.RoleAdmin), "ADMIN or EMPLOYEE")
	newSecret := pflag.Bool("new-secret", false, "print a fresh jwt secret and exit")
	pflag.Parse()

	if *newSecret {
		secret, err := keygen.GenerateSecret(48)
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Println(secret)
		return
	}

	r := domain.UserRole(strings.ToUpper(*role))
	if !r.Valid() {
		log.Fatalf("Invalid role %q", *role)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	issuer, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}

	token, expires, err := issuer.Issue(domain.Caller{UserID: *userID, Role: r})
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "user=%d role=%s expires=%s\n", *userID, r, expires.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Println(token)
}

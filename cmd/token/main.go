// Package main provides a CLI tool that mints bearer tokens for the news admin API.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/helixir/news-admin-service/internal/auth"
	"github.com/helixir/news-admin-service/internal/config"
	"github.com/helixir/news-admin-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	userID := flag.Int64("user", 0, "User id placed in the token subject (required)")
	roles := flag.String("roles", "", "Comma-separated roles, e.g. admin")
	ttl := flag.Duration("ttl", 0, "Token lifetime (defaults to auth.token_ttl)")
	flag.Parse()

	if *userID <= 0 {
		flag.Usage()
		return fmt.Errorf("-user must be a positive integer")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	})
	logger = observability.WithComponent(logger, "token")

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, err := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.Issuer, lifetime).Issue(*userID, roleList...)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	logger.Info().
		Int64("user_id", *userID).
		Strs("roles", roleList).
		Dur("ttl", lifetime).
		Msg("token issued")
	fmt.Println(token)
	return nil
}

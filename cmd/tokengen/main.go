package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/spec-kit/cityaid-service/internal/auth"
	"github.com/spec-kit/cityaid-service/internal/config"
	"github.com/spec-kit/cityaid-service/internal/domain"
)

// tokengen issues a development JWT for exercising the API by hand.
func main() {
	userID := flag.String("user", "dev-user", "subject claim")
	city := flag.String("city", "PUN", "3-letter city code")
	team := flag.String("team", "AL", "team code (AL, BE, FIN, PMO, AN)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cityCode, err := domain.NewCityCode(*city)
	if err != nil {
		log.Fatalf("invalid city: %v", err)
	}
	teamType, ok := domain.TeamFromCode(*team)
	if !ok {
		log.Fatalf("invalid team code %q", *team)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	token, expiresAt, err := tokens.GenerateToken(*userID, cityCode, teamType)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Println(token)
	fmt.Printf("expires at %s\n", expiresAt.Format("2006-01-02T15:04:05Z07:00"))
}

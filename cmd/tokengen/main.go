// Command tokengen prints an admin bearer token for the route and passenger
// administration endpoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Domenick1991/airreservations/config"
	"github.com/Domenick1991/airreservations/internal/auth"
	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("subject", "operator", "token subject")
	role := flag.String("role", auth.RoleAdmin, "role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	token, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(*subject, *role, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}

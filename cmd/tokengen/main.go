// Command tokengen mints bearer tokens for local development and testing.
// It signs with the same key the server reads from JWT_SIGNING_KEY, so a
// minted token works against a locally running ledger.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "kyc-ledger/internal/jwt_token"
	"kyc-ledger/internal/platform/config"
)

func main() {
	address := flag.String("address", "", "caller address to embed in the token")
	role := flag.String("role", jwttoken.RoleBank, "caller role: bank or admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *address == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -address <address> [-role bank|admin] [-ttl 1h]")
		os.Exit(2)
	}
	if *role != jwttoken.RoleBank && *role != jwttoken.RoleAdmin {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg := config.FromEnv()
	svc := jwttoken.NewJWTService(cfg.JWTSigningKey, *ttl)

	token, err := svc.GenerateToken(*address, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

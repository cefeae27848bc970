// Command issuetoken mints a bearer token for a principal using the
// JWT_SECRET and JWT_TTL the API server is configured with.
//
//	issuetoken -user 7d9f... -role manager [-ttl 1h]
//
// The token is written to stdout; nothing else is printed on success.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Sumit07M/bg-verification-project/auth"
	"github.com/Sumit07M/bg-verification-project/config"
	"github.com/Sumit07M/bg-verification-project/models"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("issuetoken", flag.ContinueOnError)
	userID := fs.String("user", "", "User ID to embed in the token (required)")
	role := fs.String("role", "", "Role to embed: employee|manager (required)")
	ttl := fs.Duration("ttl", 0, "Token lifetime; defaults to JWT_TTL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := models.ParseRole(*role)
	if err != nil {
		return err
	}
	principal, err := models.NewPrincipal(*userID, r)
	if err != nil {
		return err
	}

	authCfg, err := config.LoadAuth()
	if err != nil {
		return err
	}
	lifetime := authCfg.TokenTTL
	if *ttl != 0 {
		lifetime = *ttl
	}

	token, err := mint(authCfg, principal, lifetime)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, token)
	return err
}

func mint(authCfg config.AuthConfig, p models.Principal, ttl time.Duration) (string, error) {
	key, err := authCfg.SigningKey()
	if err != nil {
		return "", err
	}
	codec, err := auth.NewCodec(key)
	if err != nil {
		return "", err
	}
	token, _, err := codec.Issue(p, ttl)
	return token, err
}

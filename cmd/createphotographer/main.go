// Command createphotographer provisions a photographer row for an external
// auth subject and prints a fresh API key. The key is shown once and only
// its hash is stored.
//
// Usage:
//
//	createphotographer -auth-id "auth0|abc123" -email studio@example.com -studio "Light & Shade"
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sabaipics/sabaipics/app/models"
	"github.com/sabaipics/sabaipics/app/repository"
	"github.com/sabaipics/sabaipics/internal/pkg/database"
	"github.com/sabaipics/sabaipics/internal/pkg/env"
	"github.com/sabaipics/sabaipics/internal/pkg/security"
)

func main() {
	authID := flag.String("auth-id", "", "external auth subject")
	email := flag.String("email", "", "contact email")
	studio := flag.String("studio", "", "studio name")
	flag.Parse()

	if *authID == "" || *email == "" {
		flag.Usage()
		os.Exit(1)
	}

	env.SetupEnvFile()
	database.SetupDatabase()

	apiKey, err := security.GenerateAPIKey()
	if err != nil {
		log.Fatalf("key generation failed: %v", err)
	}

	photographers := repository.NewPhotographerRepository(database.GetDB())
	photographer := &models.Photographer{
		AuthID:     *authID,
		Email:      *email,
		StudioName: *studio,
		APIKeyHash: models.HashAPIKey(apiKey),
	}
	if err := photographers.Create(photographer); err != nil {
		log.Fatalf("create failed: %v", err)
	}

	fmt.Printf("photographer %d created\napi key (save it now, it is not shown again): %s\n", photographer.ID, apiKey)
}

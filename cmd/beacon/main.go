package main

import (
	"log"
	"os"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/auth"
	"github.com/beacon-dev/beacon/internal/router"
	"github.com/joho/godotenv"
)

func main() {
	var err error

	if err = godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err = db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err = auth.InitVerifier(); err != nil {
		log.Fatalf("Failed to configure auth verifier: %v", err)
	}

	if err = auth.InitInternalSecret(); err != nil {
		log.Fatalf("Failed to configure internal token secret: %v", err)
	}

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err = r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

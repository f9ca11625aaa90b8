package main

import (
	"log"
	"net/http"
	"os"

	"scom-asset-api/internal"
	"scom-asset-api/internal/config"
)

func main() {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = cfg.DatabaseURL
	}
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	srv := internal.NewServer(dsn, cfg)

	log.Println("Starting SCOM asset API server...")
	log.Printf("JWT Issuer: %s", cfg.JWTIssuer)
	log.Printf("JWT Audience: %s", cfg.JWTAudience)
	log.Printf("JWT Expiry: %v", cfg.JWTExpiry)
	log.Printf("Upload directory: %s", cfg.UploadDir)
	log.Printf("Listening on %s", cfg.ListenAddr)

	log.Fatal(http.ListenAndServe(cfg.ListenAddr, srv.Router))
}

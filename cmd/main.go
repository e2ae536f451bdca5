package main

import (
	"log"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/roamio/tripplanner/internal/admin"
	"github.com/roamio/tripplanner/internal/config"
	"github.com/roamio/tripplanner/internal/database"
	"github.com/roamio/tripplanner/internal/mailer"
	"github.com/roamio/tripplanner/internal/providers"
	"github.com/roamio/tripplanner/internal/server"
	"github.com/roamio/tripplanner/internal/storage"
	"github.com/roamio/tripplanner/internal/token"
	"github.com/roamio/tripplanner/internal/trip"
	"github.com/roamio/tripplanner/internal/user"
)

func main() {
	cfg := config.Load()

	if err := token.ValidateSecret(cfg.JWTSecret); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	log.Println("✅ JWT secret validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed: ", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	// ========== STORAGE SETUP ==========
	var store storage.Store
	if cfg.UseS3 && cfg.S3Bucket != "" && cfg.S3Region != "" {
		s3Store, err := storage.NewS3(cfg.S3Bucket, cfg.S3Region, cfg.CloudFrontURL)
		if err != nil {
			log.Println("⚠️  S3 initialization failed:", err)
			log.Println("⚠️  Falling back to local storage")
		} else {
			store = s3Store
			log.Printf("☁️  Using S3: %s (region: %s)", cfg.S3Bucket, cfg.S3Region)
		}
	}
	if store == nil {
		localStore, err := storage.NewLocal("./uploads")
		if err != nil {
			log.Fatal("❌ Failed to initialize local storage: ", err)
		}
		store = localStore
		log.Println("💾 Using LOCAL storage mode (./uploads/)")
	}

	// ========== DEPENDENCIES ==========
	tokens := token.NewService(cfg.JWTSecret)
	mail := mailer.NewSMTP(cfg)

	oauthCfg := &oauth2.Config{
		RedirectURL:  cfg.FrontendURL + "/auth/google/callback",
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	deps := server.Deps{
		Tokens: tokens,
		Users: user.NewHandler(
			db, tokens, mail, store,
			&user.TokeninfoVerifier{ClientID: cfg.GoogleClientID},
			oauthCfg, cfg.FrontendURL,
		),
		Trips: trip.NewHandler(
			db,
			providers.NewGemini(cfg.GeminiAPIKey),
			providers.NewPlaces(cfg.PlacesAPIKey),
			providers.NewWeather(cfg.WeatherAPIKey),
		),
		Admin: admin.NewHandler(db),
	}

	// ========== START SERVER ==========
	app := server.New(deps)

	log.Printf("🚀 Trip Planner API starting on %s", cfg.ServerAddr)
	log.Printf("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server: ", err)
	}
}

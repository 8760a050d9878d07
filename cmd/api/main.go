package main

import (
	"log"
	"net/http"
	"time"

	"coinladder-api/internal/account"
	"coinladder-api/internal/api"
	"coinladder-api/internal/auth"
	"coinladder-api/internal/config"
	"coinladder-api/internal/database"
	"coinladder-api/internal/notify"
	"coinladder-api/internal/payout"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	// Connect to Redis
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Could not connect to redis: %v", err)
	}

	verifier := auth.NewClient(cfg.AuthVerifyURL, cfg.AuthAPIKey, rdb, time.Duration(cfg.AuthCacheTTL)*time.Second)

	var notifier account.Notifier
	if cfg.BotToken != "" {
		tg, err := notify.NewService(cfg.BotToken, db)
		if err != nil {
			log.Fatalf("Could not create notifier: %v", err)
		}
		notifier = tg
		log.Println("Referral credit notifications enabled")
	}

	if cfg.AdminUID == "" {
		log.Println("ADMIN_UID not set, admin shares will not be credited")
	}
	engine := payout.NewEngine(cfg.AdminUID)

	accounts := account.NewService(db, engine, notifier)
	server := api.NewServer(accounts, verifier)

	log.Printf("Service started on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, server.Router()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

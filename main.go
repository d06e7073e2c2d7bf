package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aiweb-chat/aiweb/config"
	"github.com/aiweb-chat/aiweb/controllers"
	"github.com/aiweb-chat/aiweb/routes"
	"github.com/aiweb-chat/aiweb/stores"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	store, err := stores.NewStore(stores.NewStoreConfig(cfg.StoreType, cfg.DSN()))
	if err != nil {
		log.Fatalf("Failed to connect to %s store: %v", cfg.StoreType, err)
	}
	defer store.Close()
	log.Printf("Connected to %s store", cfg.StoreType)

	logger := stores.NewChatLogger(store, cfg.MaxConversations)

	// Retention also runs on conversation creation; the sweep catches
	// conversations created out of band.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if err := logger.EnforceRetention(); err != nil {
			log.Printf("Warning: scheduled retention sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule retention sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := routes.SetupRouter(
		controllers.NewChatController(logger),
		controllers.NewHistoryController(store),
	)

	log.Printf("Listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

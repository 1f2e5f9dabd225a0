package main

import (
	"net/http"
	"os"

	"prophecyorb/config/database"
	"prophecyorb/internal/upload"
	"prophecyorb/pkg/logger"
	"prophecyorb/router"
	"prophecyorb/socket"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	dbPath := os.Getenv("ORB_DB_PATH")
	if dbPath == "" {
		dbPath = "instance/orb.db"
	}
	db := database.Connect(dbPath)
	defer db.Close()

	uploads, err := upload.NewStore(upload.DefaultDir)
	if err != nil {
		logger.Sugar.Fatalf("Failed to prepare uploads directory: %v", err)
	}

	hub := socket.NewHub(db)
	go hub.Run()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	logger.Sugar.Infof("Dusting off orb... listening on :%s", port)
	if err := http.ListenAndServe(":"+port, router.Setup(db, hub, uploads)); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}

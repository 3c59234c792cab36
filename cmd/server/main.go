package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/router"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/config"
	"github.com/rishuraj778292/LLMbeing-sub001/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize store connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure store connections are closed when main exits

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	broadcaster := router.SetupRoutes(e, cfg, db)
	defer broadcaster.Close()

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

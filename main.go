package main

import (
	"context"
	"log"
	"os"

	"Gin_postgres_library_management/app"
	"Gin_postgres_library_management/config"
	"Gin_postgres_library_management/db"
	"Gin_postgres_library_management/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	repo := db.NewRepo(application.DB, application.Config.Policy())
	app.BootstrapFirstAdmin(context.Background(), application.Config, repo)

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}

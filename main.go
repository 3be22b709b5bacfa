package main

import (
	"context"
	"net/http"

	"github.com/CUknot/social_backend/config"
	"github.com/CUknot/social_backend/database"
	"github.com/CUknot/social_backend/docs"
	"github.com/CUknot/social_backend/imagestore"
	"github.com/CUknot/social_backend/logging"
	"github.com/CUknot/social_backend/server"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// @title           Social API
// @version         1.0
// @description     API Server for the social networking application
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	envErr := config.LoadEnv()
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel, cfg.LogstashAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up logging")
	}
	if envErr != nil {
		log.Info("No .env file found, using system environment variables")
	}
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		users := services.NewUserService(db, log, cfg.JWTSecret, cfg.TokenTTL)
		if err := users.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.WithError(err).Fatal("Failed to seed admin account")
		}
	}

	images, err := imagestore.New(cfg.Cloudinary)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up image hosting")
	}
	if !cfg.Cloudinary.Enabled() {
		log.Warn("Cloudinary is not configured, profile picture uploads are disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Set up Swagger info
	docs.SwaggerInfo.Title = "Social API"
	docs.SwaggerInfo.Description = "API Server for the social networking application"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	router, err := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Images:   images,
		Registry: reg,
		Log:      log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build router")
	}

	log.WithField("port", cfg.Port).Info("Server running")
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Failed to start server")
	}
}

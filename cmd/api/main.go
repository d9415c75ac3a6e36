package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/joinup-app/joinup/docs"
	"github.com/joinup-app/joinup/internal/admin"
	"github.com/joinup-app/joinup/internal/auth"
	"github.com/joinup-app/joinup/internal/config"
	"github.com/joinup-app/joinup/internal/database"
	"github.com/joinup-app/joinup/internal/event"
	"github.com/joinup-app/joinup/internal/favorite"
	"github.com/joinup-app/joinup/internal/geocode"
	"github.com/joinup-app/joinup/internal/images"
	"github.com/joinup-app/joinup/internal/request"
	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
	mw "github.com/joinup-app/joinup/pkg/middleware"
)

// @title        JoinUp API
// @version      1.0
// @description  Social event coordination API: publish events, request to join, manage participants and favorites.
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewMongoConnection(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Disconnect(db)

	log.Println("Connected to database successfully")

	clk := clock.Real{}

	// Image CDN (optional: image handling is skipped when unset)
	var imageStore *images.Store
	if cfg.CloudinaryURL != "" {
		imageStore, err = images.New(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("Failed to configure image store: %v", err)
		}
	} else {
		log.Println("CLOUDINARY_URL not set, image uploads disabled")
	}

	geocoder := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent)

	// Repositories
	userRepo := user.NewRepository(db)
	eventRepo := event.NewRepository(db)
	requestRepo := request.NewRepository(db)
	favoriteRepo := favorite.NewRepository(db)

	// Auth gate
	authGate := mw.NewAuth(cfg.JWTSecret, userRepo)

	// User feature
	var userImages user.ImageStore
	if imageStore != nil {
		userImages = imageStore
	}
	userService := user.NewService(userRepo, userImages)
	userHandler := user.NewHandler(userService, authGate)

	// Auth feature
	authService := auth.NewService(userRepo, cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, clk)
	authHandler := auth.NewHandler(authService)

	// Event feature
	var eventImages event.ImageStore
	if imageStore != nil {
		eventImages = imageStore
	}
	eventService := event.NewService(eventRepo, requestRepo, favoriteRepo, userRepo, geocoder, eventImages, clk)
	eventHandler := event.NewHandler(eventService, authGate)

	// Request feature
	requestService := request.NewService(requestRepo, eventRepo, userRepo, clk, int64(cfg.MaxPendingRequests))
	requestHandler := request.NewHandler(requestService, authGate)

	// Favorite feature
	favoriteService := favorite.NewService(favoriteRepo, eventRepo, userRepo, clk)
	favoriteHandler := favorite.NewHandler(favoriteService, authGate)

	// Admin feature
	adminService := admin.NewService(userRepo, eventRepo, requestRepo, clk)
	adminHandler := admin.NewHandler(adminService, eventService, authGate)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/users", userHandler.Routes())
		r.Mount("/events", eventHandler.Routes())
		r.Mount("/requests", requestHandler.Routes())
		r.Mount("/favorites", favoriteHandler.Routes())
		r.Mount("/admin", adminHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

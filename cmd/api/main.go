package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendance-backend/internal/appsscript"
	"attendance-backend/internal/attendance"
	"attendance-backend/internal/config"
	"attendance-backend/internal/geofence"
	"attendance-backend/internal/handler"
	"attendance-backend/internal/httpmiddleware"
	"attendance-backend/internal/store"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	// The persistence sink is audit/fallback storage; either backend
	// satisfies it.
	var sink attendance.Sink
	var lister handler.RecordLister
	if cfg.StoreBackend == "redis" {
		ds := store.NewDocumentStore(redisClient.Client, "attendance:records")
		sink, lister = ds, ds
		log.Println("store backend: redis")
	} else {
		repo := store.NewRepository(db.Client)
		sink, lister = repo, repo
		log.Println("store backend: postgres")
	}

	var fwd attendance.Forwarder
	if cfg.AppsScriptURL != "" {
		fwd = appsscript.New(cfg.AppsScriptURL, cfg.ForwardTimeout)
		log.Println("Apps Script forwarding configured")
	} else {
		log.Println("Apps Script forwarding not configured (APPS_SCRIPT_URL not set)")
	}

	office := geofence.Config{Lat: cfg.OfficeLat, Lng: cfg.OfficeLng, RadiusM: cfg.OfficeRadiusM}
	svc := attendance.NewService(fwd, sink, office, cfg.MaxAccuracyM)
	h := handler.New(svc, lister, cfg)

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	// Security headers
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy && !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Store diagnostics, mirrors what /healthz says but in words.
	r.GET("/test", func(c *gin.Context) {
		dbStatus := "not connected"
		if db.Healthy(c.Request.Context()) {
			dbStatus = "connected"
		}
		redisStatus := "not connected"
		if redisClient.Healthy(c.Request.Context()) {
			redisStatus = "connected"
		}
		c.JSON(http.StatusOK, gin.H{
			"backend":       "running",
			"store_backend": cfg.StoreBackend,
			"database":      dbStatus,
			"redis":         redisStatus,
			"database_url":  cfg.DatabaseURL != "",
		})
	})

	r.GET("/", h.Root)
	api := r.Group("/api")
	{
		api.GET("/hello", h.Hello)
		api.GET("/info", h.Info)
		api.POST("/attendance", h.Submit)
		api.GET("/records", h.ListRecords)
	}

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

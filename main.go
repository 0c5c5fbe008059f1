package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mannMitraAPI/config"
	"mannMitraAPI/handlers"
	"mannMitraAPI/internal/microplan"
	"mannMitraAPI/internal/workers"
	"mannMitraAPI/middleware"
	"mannMitraAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool          *pgxpool.Pool
	sessionService  *services.SessionService
	helplineService *services.HelplineService
	chatService     *services.ChatService
	wellnessService *services.WellnessService
	journalService  *services.JournalService
	studyService    *services.StudyTimerService
	planService     *services.MicroPlanService
	badgeService    *services.BadgeService
	mythsService    *services.MythsFactsService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	planCatalog, err := microplan.LoadCatalog("./data/micro_plans.json")
	if err != nil {
		log.Fatal("Failed to load micro-plan catalog:", err)
	}

	mythsService, err = services.NewMythsFactsService("./data/myths_facts.json")
	if err != nil {
		log.Fatal("Failed to load myths catalog:", err)
	}

	sessionService = services.NewSessionService(dbPool)
	helplineService = services.NewHelplineService(dbPool, config.Helplines)
	chatService = services.NewChatService(dbPool, sessionService, helplineService, config.CrisisKeywords)
	wellnessService = services.NewWellnessService(dbPool, sessionService)
	journalService = services.NewJournalService(dbPool)
	studyService = services.NewStudyTimerService(dbPool)
	planService = services.NewMicroPlanService(dbPool, planCatalog)
	badgeService = services.NewBadgeService(dbPool)

	if err := badgeService.SeedCatalog(ctx); err != nil {
		log.Fatal("Failed to seed badge catalog:", err)
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set, chat responses disabled")
	} else {
		generator, err := services.NewGeminiGenerator(ctx, geminiKey)
		if err != nil {
			log.Printf("Warning: Could not initialize Gemini: %v", err)
		} else {
			chatService.SetResponseGenerator(generator)
			log.Println("Gemini response generator initialized successfully")
		}
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	chatHandler := handlers.NewChatHandler(chatService)
	wellnessHandler := handlers.NewWellnessHandler(wellnessService, badgeService)
	journalHandler := handlers.NewJournalHandler(journalService, badgeService)
	studyHandler := handlers.NewStudyHandler(studyService, badgeService)
	planHandler := handlers.NewMicroPlanHandler(planService, badgeService)
	badgeHandler := handlers.NewBadgeHandler(badgeService)
	helplineHandler := handlers.NewHelplineHandler(helplineService)
	mythsHandler := handlers.NewMythsHandler(mythsService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()
	workers.StartCleanupWorker(dbPool)

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "mannMitra-api"}`))
	}).Methods("GET")

	// Operator surfaces share the metrics basic auth.
	r.Handle("/admin/crisis-logs", middleware.BasicAuthMiddleware(http.HandlerFunc(helplineHandler.GetCrisisLogs))).Methods("GET")
	r.Handle("/admin/crisis-stats", middleware.BasicAuthMiddleware(http.HandlerFunc(helplineHandler.GetCrisisStats))).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public reference data, no session needed
	api.HandleFunc("/helplines", helplineHandler.GetHelplines).Methods("GET")
	api.HandleFunc("/helplines/regional", helplineHandler.GetRegionalHelplines).Methods("GET")
	api.HandleFunc("/emergency-resources", helplineHandler.GetEmergencyResources).Methods("GET")
	api.HandleFunc("/myths-facts", mythsHandler.GetMythsFacts).Methods("GET")
	api.HandleFunc("/myths-facts/random", mythsHandler.GetRandom).Methods("GET")
	api.HandleFunc("/myths-facts/search", mythsHandler.Search).Methods("GET")
	api.HandleFunc("/myths-facts/categories", mythsHandler.GetCategories).Methods("GET")
	api.HandleFunc("/myths-facts/{id}", mythsHandler.GetByID).Methods("GET")
	api.HandleFunc("/badges/catalog", badgeHandler.GetCatalog).Methods("GET")
	api.HandleFunc("/micro-plans", planHandler.GetAvailablePlans).Methods("GET")

	// -------------------------------------------------------------------------
	// SESSION-SCOPED ROUTES (ANONYMOUS COOKIE SESSION)
	// -------------------------------------------------------------------------
	sessionMW := middleware.NewSessionMiddleware(sessionService)
	scoped := api.PathPrefix("").Subrouter()
	scoped.Use(sessionMW.Handler)

	scoped.HandleFunc("/session", sessionHandler.GetSession).Methods("GET")
	scoped.HandleFunc("/session/persona", sessionHandler.SetPersona).Methods("PUT")
	scoped.HandleFunc("/session/language", sessionHandler.SetLanguage).Methods("PUT")
	scoped.HandleFunc("/session/preferences", sessionHandler.GetPreferences).Methods("GET")
	scoped.HandleFunc("/session/preferences/mood-reminders", sessionHandler.SetMoodReminders).Methods("PUT")

	scoped.HandleFunc("/chat", chatHandler.SendMessage).Methods("POST")
	scoped.HandleFunc("/chat/history", chatHandler.GetHistory).Methods("GET")

	scoped.HandleFunc("/mood", wellnessHandler.LogMood).Methods("POST")
	scoped.HandleFunc("/mood/history", wellnessHandler.GetMoodHistory).Methods("GET")
	scoped.HandleFunc("/mood/trend", wellnessHandler.GetMoodTrend).Methods("GET")
	scoped.HandleFunc("/mood/streak", wellnessHandler.GetMoodStreak).Methods("GET")
	scoped.HandleFunc("/mood/weekly-summary", wellnessHandler.GetWeeklySummary).Methods("GET")
	scoped.HandleFunc("/mood/reminder-check", wellnessHandler.CheckMoodReminder).Methods("GET")
	scoped.HandleFunc("/nudges", wellnessHandler.ScheduleNudge).Methods("POST")
	scoped.HandleFunc("/nudges/pending", wellnessHandler.GetPendingNudges).Methods("GET")

	scoped.HandleFunc("/journal", journalHandler.CreateEntry).Methods("POST")
	scoped.HandleFunc("/journal", journalHandler.GetEntries).Methods("GET")
	scoped.HandleFunc("/journal/search", journalHandler.SearchEntries).Methods("GET")
	scoped.HandleFunc("/journal/by-mood", journalHandler.GetEntriesByMood).Methods("GET")
	scoped.HandleFunc("/journal/export", journalHandler.ExportEntries).Methods("GET")
	scoped.HandleFunc("/journal/stats", journalHandler.GetStats).Methods("GET")
	scoped.HandleFunc("/journal/streak", journalHandler.GetWritingStreak).Methods("GET")
	scoped.HandleFunc("/journal/tag/{tag}", journalHandler.GetEntriesByTag).Methods("GET")
	scoped.HandleFunc("/journal/{id}", journalHandler.GetEntry).Methods("GET")
	scoped.HandleFunc("/journal/{id}", journalHandler.UpdateEntry).Methods("PUT")
	scoped.HandleFunc("/journal/{id}", journalHandler.DeleteEntry).Methods("DELETE")

	scoped.HandleFunc("/study/start", studyHandler.StartSession).Methods("POST")
	scoped.HandleFunc("/study/stop", studyHandler.StopSession).Methods("POST")
	scoped.HandleFunc("/study/pause", studyHandler.PauseSession).Methods("POST")
	scoped.HandleFunc("/study/status", studyHandler.GetStatus).Methods("GET")
	scoped.HandleFunc("/study/sessions", studyHandler.GetSessions).Methods("GET")
	scoped.HandleFunc("/study/stats", studyHandler.GetStats).Methods("GET")

	scoped.HandleFunc("/micro-plans/active", planHandler.GetActivePlans).Methods("GET")
	scoped.HandleFunc("/micro-plans/completed", planHandler.GetCompletedPlans).Methods("GET")
	scoped.HandleFunc("/micro-plans/{planId}/enroll", planHandler.Enroll).Methods("POST")
	scoped.HandleFunc("/micro-plans/{planId}/complete-task", planHandler.CompleteTask).Methods("POST")
	scoped.HandleFunc("/micro-plans/{planId}/progress", planHandler.GetProgress).Methods("GET")

	scoped.HandleFunc("/badges", badgeHandler.GetUserBadges).Methods("GET")
	scoped.HandleFunc("/badges/progress", badgeHandler.GetProgress).Methods("GET")
	scoped.HandleFunc("/badges/evaluate", badgeHandler.Evaluate).Methods("POST")
	scoped.HandleFunc("/badges/stats", badgeHandler.GetStats).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kadrohq/kadro/config"
	"github.com/kadrohq/kadro/internal/api/handlers"
	"github.com/kadrohq/kadro/internal/api/middleware"
	"github.com/kadrohq/kadro/internal/api/routes"
	"github.com/kadrohq/kadro/internal/cache"
	"github.com/kadrohq/kadro/internal/logger"
	"github.com/kadrohq/kadro/internal/providers/llm"
	mongorepo "github.com/kadrohq/kadro/internal/repositories/mongo"
	pgrepo "github.com/kadrohq/kadro/internal/repositories/postgres"
	"github.com/kadrohq/kadro/internal/services"
	"github.com/kadrohq/kadro/internal/storage"
	"github.com/kadrohq/kadro/internal/workers"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()
	ctx := context.Background()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	l.Info("MongoDB connected")

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		log.Fatal("GCS_BUCKET environment variable is not set")
	}
	store, err := storage.NewGCSStore(ctx, bucket)
	if err != nil {
		log.Fatalf("GCS init error: %v", err)
	}
	defer store.Close()

	gemini, err := llm.NewVertexGemini(ctx,
		os.Getenv("VERTEX_PROJECT_ID"),
		os.Getenv("VERTEX_LOCATION"),
		os.Getenv("VERTEX_MODEL"),
	)
	if err != nil {
		log.Fatalf("Vertex init error: %v", err)
	}
	defer gemini.Close()

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "kadro"
	}

	// repositories
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	jobRepo := pgrepo.NewJobRepo(config.PostgresDB)
	candidateRepo := pgrepo.NewCandidateRepo(config.PostgresDB)
	interviewRepo := pgrepo.NewInterviewRepo(config.PostgresDB)
	conversationRepo := pgrepo.NewConversationRepo(config.PostgresDB)
	analysisRepo := mongorepo.NewAnalysisRepo(config.MongoClient.Database(mongoDB))

	rcache := cache.NewRedisCache(config.RedisClient)

	// services
	authSvc := services.NewAuthService(userRepo, jwtSecret)
	tokenSvc := services.NewTokenService(candidateRepo, rcache)
	jobSvc := services.NewJobService(jobRepo)
	candidateSvc := services.NewCandidateService(candidateRepo, store, os.Getenv("APP_BASE_URL"))
	interviewSvc := services.NewInterviewService(interviewRepo, candidateRepo, tokenSvc, rcache, config.RedisClient, store, l)
	conversationSvc := services.NewConversationService(conversationRepo, config.RedisClient, l)
	questionSvc := services.NewQuestionService(gemini)
	uploadSvc := services.NewUploadService(store)
	analysisSvc := services.NewAnalysisService(analysisRepo, interviewSvc, config.RedisClient)

	// background analysis workers
	pool := &workers.AnalysisWorkerPool{
		Redis:         config.RedisClient,
		Conversations: conversationSvc,
		Interviews:    interviewSvc,
		Analyses:      analysisRepo,
		LLM:           gemini,
		ModelName:     os.Getenv("VERTEX_MODEL"),
		Logger:        l,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("worker pool error: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret:    jwtSecret,
		Auth:         handlers.NewAuthHandler(authSvc),
		Token:        handlers.NewTokenHandler(tokenSvc),
		Job:          handlers.NewJobHandler(jobSvc),
		Candidate:    handlers.NewCandidateHandler(candidateSvc),
		Interview:    handlers.NewInterviewHandler(interviewSvc, questionSvc),
		Conversation: handlers.NewConversationHandler(conversationSvc),
		Upload:       handlers.NewUploadHandler(tokenSvc, uploadSvc),
		Analysis:     handlers.NewAnalysisHandler(analysisSvc),
		WS:           handlers.NewWSHandler(interviewSvc, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"time"

	"dtm-test-service/internal/cache"
	"dtm-test-service/internal/config"
	"dtm-test-service/internal/db"
	"dtm-test-service/internal/event"
	"dtm-test-service/internal/handlers"
	"dtm-test-service/internal/repository"
	"dtm-test-service/internal/service"
	"dtm-test-service/internal/session"
	"dtm-test-service/internal/translations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	db.InitMongo(cfg.MongoURI)
	database := db.Client.Database(cfg.MongoDB)

	// RabbitMQ event publisher, optional
	var publisher *event.Publisher
	if cfg.RabbitURI != "" && cfg.RabbitExchange != "" {
		publisher, err = event.NewPublisher(cfg.RabbitURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, lifecycle events will not be published")
	}

	// Redis language cache, optional
	langCache := cache.New(cfg.RedisAddr, cfg.RedisPwd, cfg.RedisDB)

	tr := translations.Load(cfg.TranslationsDir, cfg.SupportedLanguages, cfg.DefaultLanguage)

	// Repositories
	questionRepo := repository.NewQuestionRepository(database)
	resultRepo := repository.NewResultRepository(database)
	userRepo := repository.NewUserRepository(database)
	adminRepo := repository.NewAdminRepository(database)

	// Session registry, one live test per user
	registry := session.NewRegistry()

	// Services
	userService := service.NewUserService(userRepo, langCache, publisher, cfg)
	testService := service.NewTestService(registry, questionRepo, resultRepo, publisher, cfg.QuestionsPerTest, cfg.ResultsHistoryLimit)
	questionService := service.NewQuestionService(questionRepo)
	adminService := service.NewAdminService(cfg, adminRepo, userRepo, resultRepo, questionRepo, registry)

	// The configured super admin is always on the stored list too, so
	// dashboards that read only the collection still see them.
	if cfg.SuperAdminID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := adminService.AddAdmin(ctx, cfg.SuperAdminID); err != nil {
			log.Printf("Failed to store super admin: %v", err)
		}
		cancel()
	}

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	testHandler := handlers.NewTestHandler(testService, userService, tr, cfg)
	questionHandler := handlers.NewQuestionHandler(questionService)
	adminHandler := handlers.NewAdminHandler(adminService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	user := r.Group("/quiz/user")
	{
		user.POST("/start", userHandler.Start)
		user.PUT("/language", userHandler.SelectLanguage)
		user.GET("/results", testHandler.Results)
	}

	test := r.Group("/quiz/test")
	{
		test.POST("/start", testHandler.StartTest)
		test.GET("/current", testHandler.CurrentQuestion)
		test.POST("/answer", testHandler.Answer)
		test.POST("/cancel", testHandler.CancelTest)
		test.GET("/analysis", testHandler.Analysis)
	}

	admin := r.Group("/admin")
	admin.Use(adminHandler.RequireAdmin())
	{
		admin.GET("/statistics", adminHandler.Statistics)
		admin.GET("/question-stats", adminHandler.QuestionStats)
		admin.GET("/users", adminHandler.Users)
		admin.POST("/admins", adminHandler.AddAdmin)

		admin.GET("/questions", questionHandler.ListQuestions)
		admin.GET("/questions/:id", questionHandler.GetQuestion)
		admin.POST("/questions", questionHandler.CreateQuestion)
		admin.PUT("/questions/:id", questionHandler.UpdateQuestion)
		admin.DELETE("/questions/:id", questionHandler.DeleteQuestion)
	}

	log.Printf("DTM test service listening on :%s", cfg.Port)
	r.Run(":" + cfg.Port)
}

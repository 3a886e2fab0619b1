package main

import (
	"context"
	"log"
	"time"

	"ragchat/internal/api"
	"ragchat/internal/config"
	"ragchat/internal/redis"
	"ragchat/internal/service/chat"
	"ragchat/internal/service/document"
	"ragchat/internal/service/rag"
	"ragchat/internal/session"
	"ragchat/internal/storage"
	"ragchat/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(db, cfg.Database.Driver); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	rdb, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("create redis client: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	embedder, err := rag.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatalf("init embedder: %v", err)
	}
	chatModel, err := rag.NewChatModel(ctx, cfg)
	if err != nil {
		log.Fatalf("init chat model: %v", err)
	}

	pool := worker.NewPool(cfg.IndexWorkers, cfg.IndexWorkers*2)
	defer pool.Close()

	documentService := document.NewService(db, embedder, pool, document.Config{
		SplitLength:  cfg.SplitLength,
		SplitOverlap: cfg.SplitOverlap,
		MaxFileSize:  cfg.MaxFileSize,
		BatchSize:    cfg.EmbedBatchSize,
	})
	sessions := session.NewManager(
		session.NewRedisStore(rdb),
		time.Duration(cfg.SessionTimeoutSeconds)*time.Second,
		cfg.MaxMessagesPerSession,
	)
	engine := rag.NewEngine(embedder, chatModel, documentService, cfg.TopK)
	chatService := chat.NewService(engine, sessions)

	handlers := api.NewHandler(documentService, chatService, sessions)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handlers.RegisterRoutes(router)

	if err := router.Run(cfg.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

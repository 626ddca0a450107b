package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/config"
	"github.com/openlegalassist/backend/internal/handler"
	"github.com/openlegalassist/backend/internal/pkg/database"
	"github.com/openlegalassist/backend/internal/pkg/llm"
	"github.com/openlegalassist/backend/internal/repository"
	"github.com/openlegalassist/backend/internal/router"
	"github.com/openlegalassist/backend/internal/service"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Upload.Dir, 0755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}
	if cfg.Database.Type != "mysql" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化补全客户端，未配置时以降级模式运行
	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize completion client: %v", err)
	}

	// 初始化 Repository
	sessionRepo := repository.NewSessionRepository(db)
	docRepo := repository.NewGeneratedDocumentRepository(db)

	// 初始化 Service
	analysisService := service.NewAnalysisService(client)
	questionService := service.NewQuestionService(client)
	documentService := service.NewDocumentService(client)
	chatService := service.NewChatService(client)
	workflowService := service.NewWorkflowService(
		sessionRepo, docRepo,
		analysisService, questionService, documentService, chatService,
	)

	// 初始化 Handler
	docHandler := handler.NewDocumentHandler(workflowService, questionService, documentService)
	chatHandler := handler.NewChatHandler(workflowService)

	// 设置路由
	r := router.Setup(cfg, docHandler, chatHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/config"
	"github.com/openlegalassist/backend/internal/model"
	"github.com/openlegalassist/backend/internal/pkg/extract"
	"github.com/openlegalassist/backend/internal/service"
)

// allowedExtensions 允许上传的文档扩展名
var allowedExtensions = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
	"txt":  true,
}

type DocumentHandler struct {
	workflow  *service.WorkflowService
	questions *service.QuestionService
	documents *service.DocumentService
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(workflow *service.WorkflowService, questions *service.QuestionService, documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		workflow:  workflow,
		questions: questions,
		documents: documents,
	}
}

// Upload 上传并分析文档
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No document uploaded"})
		return
	}

	cfg := config.GetConfig()
	maxBytes := int64(cfg.Upload.MaxSizeMB) << 20
	if file.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File too large, limit is %dMB", cfg.Upload.MaxSizeMB)})
		return
	}

	fileType := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if !allowedExtensions[fileType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF, DOC, DOCX, and TXT files are allowed"})
		return
	}

	// 落盘到临时路径，处理结束后无论成败都删除
	tmpPath := filepath.Join(cfg.Upload.Dir, uuid.NewString()+"."+fileType)
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		klog.Errorf("保存上传文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze document", "details": err.Error()})
		return
	}
	defer os.Remove(tmpPath)

	sessionID := c.PostForm("session_id")
	result, err := h.workflow.HandleUpload(c.Request.Context(), sessionID, tmpPath, fileType, file.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) || errors.Is(err, extract.ErrExtractionFailed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract text from document"})
			return
		}
		klog.Errorf("文档分析失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze document", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"analysis":     result.Analysis,
		"documentType": result.DocumentType,
		"originalName": result.OriginalName,
		"sessionId":    result.SessionID,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

type generateQuestionsRequest struct {
	Analysis     string `json:"analysis"`
	DocumentType string `json:"documentType"`
}

// GenerateQuestions 根据分析结果生成补全问题
func (h *DocumentHandler) GenerateQuestions(c *gin.Context) {
	var req generateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Analysis == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document analysis is required"})
		return
	}

	questions, err := h.questions.Generate(c.Request.Context(), req.Analysis)
	if err != nil {
		klog.Errorf("问题生成失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate questions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"questions": questions,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type generateDocumentRequest struct {
	Analysis     string          `json:"analysis"`
	Answers      model.AnswerSet `json:"answers"`
	DocumentType string          `json:"documentType"`
}

// GenerateDocument 根据分析结果与答案生成完成文档
func (h *DocumentHandler) GenerateDocument(c *gin.Context) {
	var req generateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Analysis == "" || len(req.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Analysis and answers are required"})
		return
	}

	document, err := h.documents.Generate(c.Request.Context(), req.Analysis, req.Answers, nil)
	if err != nil {
		klog.Errorf("文档生成失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate document", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"document":  document,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Download 下载已生成的完成文档
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, err := h.workflow.GetDocument(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	filename := "completed_" + doc.OriginalName
	if doc.OriginalName == "" {
		filename = "completed_document.txt"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc.Content))
}

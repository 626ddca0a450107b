package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/openlegalassist/backend/config"
	"github.com/openlegalassist/backend/internal/model"
	"github.com/openlegalassist/backend/internal/pkg/database"
	"github.com/openlegalassist/backend/internal/pkg/llm"
	"github.com/openlegalassist/backend/internal/repository"
	"github.com/openlegalassist/backend/internal/service"
)

func newTestServer(t *testing.T) (*gin.Engine, repository.GeneratedDocumentRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.GetConfig()
	cfg.Upload.Dir = t.TempDir()

	db, err := database.InitDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("init database: %v", err)
	}

	// 无 API Key 的客户端，所有补全调用走降级路径
	client, err := llm.NewClient(&config.Config{})
	if err != nil {
		t.Fatalf("init client: %v", err)
	}

	sessions := repository.NewSessionRepository(db)
	docs := repository.NewGeneratedDocumentRepository(db)
	analysisService := service.NewAnalysisService(client)
	questionService := service.NewQuestionService(client)
	documentService := service.NewDocumentService(client)
	chatService := service.NewChatService(client)
	workflow := service.NewWorkflowService(sessions, docs, analysisService, questionService, documentService, chatService)

	docHandler := NewDocumentHandler(workflow, questionService, documentService)
	chatHandler := NewChatHandler(workflow)

	r := gin.New()
	r.POST("/api/documents/upload", docHandler.Upload)
	r.POST("/api/documents/generate-questions", docHandler.GenerateQuestions)
	r.POST("/api/documents/generate-document", docHandler.GenerateDocument)
	r.GET("/api/documents/download/:id", docHandler.Download)
	r.POST("/api/chat/message", chatHandler.Message)
	r.POST("/api/chat/reset", chatHandler.Reset)
	r.GET("/api/chat/document-types", chatHandler.DocumentTypes)
	r.GET("/api/chat/common-questions", chatHandler.CommonQuestions)
	r.GET("/api/health", Health)

	return r, docs
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadAnalyzesDocument(t *testing.T) {
	r, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "contract.txt",
		"This Employment Contract is between John Smith and Acme Sdn Bhd dated 1/1/2024 for RM5000 monthly salary")
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success      bool   `json:"success"`
		Analysis     string `json:"analysis"`
		DocumentType string `json:"documentType"`
		OriginalName string `json:"originalName"`
		SessionID    string `json:"sessionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success")
	}
	if resp.DocumentType != "txt" || resp.OriginalName != "contract.txt" {
		t.Fatalf("unexpected metadata: %+v", resp)
	}
	if resp.SessionID == "" {
		t.Fatalf("expected session id")
	}
	if !strings.Contains(resp.Analysis, "Employment Contract") {
		t.Fatalf("analysis missing document type: %s", resp.Analysis)
	}

	// 临时文件处理完即删除
	entries, err := os.ReadDir(config.GetConfig().Upload.Dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp upload file not cleaned up: %v", entries)
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUploadRejectsBadExtension(t *testing.T) {
	r, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "malware.exe", "binary")
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadRejectsEmptyDocument(t *testing.T) {
	r, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "blank.txt", "   ")
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Could not extract text") {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}

func TestGenerateQuestionsRequiresAnalysis(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/generate-questions",
		strings.NewReader(`{"documentType": "txt"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGenerateQuestionsDegraded(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/generate-questions",
		strings.NewReader(`{"analysis": "Employment contract analysis"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success   bool                       `json:"success"`
		Questions []model.QuestionDescriptor `json:"questions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Questions) != 3 || resp.Questions[0].ID != "full_name" {
		t.Fatalf("expected default question set, got %+v", resp.Questions)
	}
}

func TestGenerateDocumentRequiresAnswers(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/documents/generate-document",
		strings.NewReader(`{"analysis": "something"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDownloadGeneratedDocument(t *testing.T) {
	r, docs := newTestServer(t)

	doc := &model.GeneratedDocument{
		ID:           "doc-1",
		SessionID:    "sess-1",
		OriginalName: "contract.txt",
		Content:      "COMPLETED DOCUMENT",
	}
	if err := docs.Create(doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents/download/doc-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "completed_contract.txt") {
		t.Fatalf("unexpected disposition: %s", w.Header().Get("Content-Disposition"))
	}
	if w.Body.String() != "COMPLETED DOCUMENT" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestDownloadMissingDocument(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/download/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestChatMessageRequiresText(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/message",
		strings.NewReader(`{"message": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatMessageDegraded(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/message",
		strings.NewReader(`{"message": "What is a tenancy agreement?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Response  string `json:"response"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// 无 API Key 的客户端走"未配置"固定回复
	if !strings.Contains(resp.Response, "unable to process your request") {
		t.Fatalf("unexpected response: %s", resp.Response)
	}
	if resp.Timestamp == "" {
		t.Fatalf("expected timestamp")
	}
}

func TestDocumentTypesCatalogue(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/document-types", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		DocumentTypes []map[string]string `json:"documentTypes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.DocumentTypes) != 6 {
		t.Fatalf("expected 6 document types, got %d", len(resp.DocumentTypes))
	}
}

func TestCommonQuestionsList(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/common-questions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		CommonQuestions []string `json:"commonQuestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.CommonQuestions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(resp.CommonQuestions))
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"OK"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

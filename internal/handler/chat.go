package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/internal/service"
)

type ChatHandler struct {
	workflow *service.WorkflowService
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(workflow *service.WorkflowService) *ChatHandler {
	return &ChatHandler{workflow: workflow}
}

type chatMessageRequest struct {
	Message             string             `json:"message"`
	ConversationHistory []service.ChatTurn `json:"conversationHistory"`
	SessionID           string             `json:"sessionId"`
}

// Message 处理一条聊天消息，带会话时驱动补全流程
func (h *ChatHandler) Message(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	result, err := h.workflow.HandleMessage(c.Request.Context(), req.SessionID, req.Message, req.ConversationHistory)
	if err != nil {
		klog.Errorf("聊天消息处理失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process your message. Please try again.",
			"details": err.Error(),
		})
		return
	}

	resp := gin.H{
		"response":  result.Response,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if req.SessionID != "" {
		resp["sessionId"] = req.SessionID
	}
	if result.DocumentID != "" {
		resp["documentId"] = result.DocumentID
	}
	c.JSON(http.StatusOK, resp)
}

type chatResetRequest struct {
	SessionID string `json:"sessionId"`
}

// Reset 重置会话，丢弃进行中的分析与问答数据
func (h *ChatHandler) Reset(c *gin.Context) {
	var req chatResetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session id is required"})
		return
	}

	session, err := h.workflow.Reset(req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": session.ID})
}

// Session 创建新会话
func (h *ChatHandler) Session(c *gin.Context) {
	session, err := h.workflow.StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": session.ID})
}

// DocumentTypes 返回支持的法律文档类型目录
func (h *ChatHandler) DocumentTypes(c *gin.Context) {
	documentTypes := []gin.H{
		{"id": "employment-contract", "name": "Employment Contract", "description": "Work agreements, terms of employment, salary details"},
		{"id": "rental-agreement", "name": "Rental Agreement", "description": "Property rental terms, lease conditions, deposit details"},
		{"id": "purchase-agreement", "name": "Purchase Agreement", "description": "Property or vehicle purchase contracts"},
		{"id": "service-agreement", "name": "Service Agreement", "description": "Service provider contracts, terms of service"},
		{"id": "loan-agreement", "name": "Loan Agreement", "description": "Personal loans, business loans, credit agreements"},
		{"id": "partnership-agreement", "name": "Partnership Agreement", "description": "Business partnership terms and conditions"},
	}
	c.JSON(http.StatusOK, gin.H{"documentTypes": documentTypes})
}

// CommonQuestions 返回常见法律问题列表
func (h *ChatHandler) CommonQuestions(c *gin.Context) {
	commonQuestions := []string{
		"What should I look for in an employment contract?",
		"What are my rights as a tenant?",
		"How do I know if a contract is fair?",
		"What happens if I break a contract?",
		"Do I need a lawyer to review this document?",
		"What are the key terms I should understand?",
		"What are the potential risks in this agreement?",
		"Can I negotiate these terms?",
		"What are my obligations under this contract?",
		"How long is this agreement valid?",
	}
	c.JSON(http.StatusOK, gin.H{"commonQuestions": commonQuestions})
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/internal/model"
	"github.com/openlegalassist/backend/internal/pkg/extract"
	"github.com/openlegalassist/backend/internal/repository"
	"github.com/openlegalassist/backend/internal/service/statemachine"
)

// ErrSessionNotFound 会话不存在
var ErrSessionNotFound = errors.New("session not found")

// UploadResult 文档上传并分析后的结果
type UploadResult struct {
	SessionID    string `json:"sessionId"`
	Analysis     string `json:"analysis"`
	DocumentType string `json:"documentType"`
	OriginalName string `json:"originalName"`
}

// MessageResult 一轮用户消息处理的结果
type MessageResult struct {
	Response   string             `json:"response"`
	DocumentID string             `json:"documentId,omitempty"`
	Phase      statemachine.Phase `json:"phase,omitempty"`
}

// WorkflowService 驱动文档补全会话
// 每个会话串行处理：会话锁覆盖整次操作（含外部补全调用），
// 同一会话的并发请求按先来后到排队
type WorkflowService struct {
	sessions repository.SessionRepository
	docs     repository.GeneratedDocumentRepository

	analysisService *AnalysisService
	questionService *QuestionService
	documentService *DocumentService
	chatService     *ChatService

	sm *statemachine.SessionStateMachine

	lockMu sync.Mutex
	locks  map[string]*sessionLock
}

// sessionLock 带引用计数的会话锁，最后一个持有者离开时从表中回收
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewWorkflowService(
	sessions repository.SessionRepository,
	docs repository.GeneratedDocumentRepository,
	analysisService *AnalysisService,
	questionService *QuestionService,
	documentService *DocumentService,
	chatService *ChatService,
) *WorkflowService {
	return &WorkflowService{
		sessions:        sessions,
		docs:            docs,
		analysisService: analysisService,
		questionService: questionService,
		documentService: documentService,
		chatService:     chatService,
		sm:              statemachine.NewSessionStateMachine(),
		locks:           make(map[string]*sessionLock),
	}
}

// StartSession 创建新会话，初始阶段为等待上传
func (s *WorkflowService) StartSession() (*model.Session, error) {
	session := &model.Session{
		ID:    uuid.NewString(),
		Phase: string(statemachine.PhaseAwaitingDocument),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// lockSession 获取并持有会话级互斥锁，保证单会话内操作严格串行
func (s *WorkflowService) lockSession(id string) *sessionLock {
	s.lockMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.lockMu.Unlock()

	l.mu.Lock()
	return l
}

// unlockSession 释放会话锁；引用计数归零时回收表项，锁表不随会话数累积
func (s *WorkflowService) unlockSession(id string, l *sessionLock) {
	l.mu.Unlock()

	s.lockMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
	s.lockMu.Unlock()
}

// HandleUpload 处理文档上传：提取文本、分析、进入等待确认阶段
// sessionID 为空时创建新会话；会话处于其他阶段时视为重新开始，丢弃旧数据
func (s *WorkflowService) HandleUpload(ctx context.Context, sessionID, filePath, fileType, originalName string) (*UploadResult, error) {
	session, err := s.loadOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	lock := s.lockSession(session.ID)
	defer s.unlockSession(session.ID, lock)

	// 新文档上传等价于"分析新文档"动作：流程中或已完成的会话先清空旧数据
	if phase := statemachine.Phase(session.Phase); statemachine.InWorkflow(phase) || phase == statemachine.PhaseDone {
		s.resetLocked(session)
	}

	if err := s.transition(session, statemachine.PhaseAnalyzing); err != nil {
		return nil, err
	}

	text, err := extract.Extract(filePath, fileType)
	if err != nil {
		s.transition(session, statemachine.PhaseAwaitingDocument)
		s.sessions.Save(session)
		return nil, err
	}

	analysis, err := s.analysisService.Analyze(ctx, text)
	if err != nil {
		s.transition(session, statemachine.PhaseAwaitingDocument)
		s.sessions.Save(session)
		return nil, err
	}

	session.Analysis = analysis
	session.DocumentType = fileType
	session.OriginalName = originalName
	if err := s.transition(session, statemachine.PhaseAwaitingConsent); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	return &UploadResult{
		SessionID:    session.ID,
		Analysis:     analysis,
		DocumentType: fileType,
		OriginalName: originalName,
	}, nil
}

// HandleMessage 处理一条用户消息
// 等待确认阶段的肯定答复开启问答；问答阶段逐题记录答案并在最后一题后生成文档；
// 其余情况一律走普通聊天，确认检测与聊天共用同一输入通道
func (s *WorkflowService) HandleMessage(ctx context.Context, sessionID, message string, history []ChatTurn) (*MessageResult, error) {
	session, err := s.loadSession(sessionID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	if session == nil {
		return s.plainChat(ctx, message, history)
	}

	lock := s.lockSession(session.ID)
	defer s.unlockSession(session.ID, lock)

	switch statemachine.Phase(session.Phase) {
	case statemachine.PhaseAwaitingConsent:
		if isAffirmative(message) && session.Analysis != "" {
			return s.startQA(ctx, session)
		}
	case statemachine.PhaseInQA:
		return s.recordAnswer(ctx, session, message)
	}

	result, err := s.plainChat(ctx, message, history)
	if err != nil {
		return nil, err
	}
	result.Phase = statemachine.Phase(session.Phase)
	return result, nil
}

// Reset 丢弃会话内全部进行中的数据，回到等待上传阶段
func (s *WorkflowService) Reset(sessionID string) (*model.Session, error) {
	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	lock := s.lockSession(session.ID)
	defer s.unlockSession(session.ID, lock)

	s.resetLocked(session)
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetDocument 取回已生成的完成文档
func (s *WorkflowService) GetDocument(id string) (*model.GeneratedDocument, error) {
	return s.docs.Get(id)
}

func (s *WorkflowService) startQA(ctx context.Context, session *model.Session) (*MessageResult, error) {
	questions, err := s.questionService.Generate(ctx, session.Analysis)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}
	session.QuestionsJSON = string(data)
	session.AnswersJSON = "{}"
	session.QuestionIndex = 0
	if err := s.transition(session, statemachine.PhaseInQA); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	return &MessageResult{
		Response: formatQuestion(questions[0], 0, len(questions), ""),
		Phase:    statemachine.PhaseInQA,
	}, nil
}

func (s *WorkflowService) recordAnswer(ctx context.Context, session *model.Session, answer string) (*MessageResult, error) {
	questions, answers, err := sessionQA(session)
	if err != nil {
		return nil, err
	}

	idx := session.QuestionIndex
	if idx >= len(questions) {
		return nil, fmt.Errorf("question index %d out of range", idx)
	}
	answers[questions[idx].ID] = answer

	answerData, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	session.AnswersJSON = string(answerData)

	if idx+1 < len(questions) {
		session.QuestionIndex = idx + 1
		if err := s.sessions.Save(session); err != nil {
			return nil, err
		}
		prefix := fmt.Sprintf("✅ Got it! **Answer %d recorded.**\n\n", idx+1)
		return &MessageResult{
			Response: formatQuestion(questions[idx+1], idx+1, len(questions), prefix),
			Phase:    statemachine.PhaseInQA,
		}, nil
	}

	return s.generateDocument(ctx, session, questions, answers)
}

func (s *WorkflowService) generateDocument(ctx context.Context, session *model.Session, questions []model.QuestionDescriptor, answers model.AnswerSet) (*MessageResult, error) {
	if err := s.transition(session, statemachine.PhaseGeneratingDocument); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	content, err := s.documentService.Generate(ctx, session.Analysis, answers, questions)
	if err != nil {
		// 生成失败回到问答末题，用户可重试
		s.transition(session, statemachine.PhaseInQA)
		s.sessions.Save(session)
		return nil, err
	}

	doc := &model.GeneratedDocument{
		ID:           uuid.NewString(),
		SessionID:    session.ID,
		OriginalName: session.OriginalName,
		Content:      content,
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}

	if err := s.transition(session, statemachine.PhaseDone); err != nil {
		return nil, err
	}
	// 完成后清空会话数据，允许分析下一份文档
	s.resetLocked(session)
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	klog.V(6).Infof("完成文档已生成: sessionID=%s, documentID=%s", session.ID, doc.ID)
	return &MessageResult{
		Response: "🎉 **Document completed successfully!**\n\nYour document has been generated " +
			"with all the information you provided. Use the download link below to retrieve it.",
		DocumentID: doc.ID,
		Phase:      statemachine.PhaseAwaitingDocument,
	}, nil
}

func (s *WorkflowService) plainChat(ctx context.Context, message string, history []ChatTurn) (*MessageResult, error) {
	response, err := s.chatService.Chat(ctx, message, history)
	if err != nil {
		return nil, err
	}
	return &MessageResult{Response: response}, nil
}

func (s *WorkflowService) loadSession(id string) (*model.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessions.Get(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *WorkflowService) loadOrCreate(id string) (*model.Session, error) {
	if id == "" {
		return s.StartSession()
	}
	session, err := s.loadSession(id)
	if errors.Is(err, ErrSessionNotFound) {
		return s.StartSession()
	}
	return session, err
}

// resetLocked 清空会话数据并回到等待上传阶段，调用方必须已持有会话锁
func (s *WorkflowService) resetLocked(session *model.Session) {
	session.Analysis = ""
	session.DocumentType = ""
	session.OriginalName = ""
	session.QuestionsJSON = ""
	session.AnswersJSON = ""
	session.QuestionIndex = 0
	session.Phase = string(statemachine.PhaseAwaitingDocument)
}

func (s *WorkflowService) transition(session *model.Session, to statemachine.Phase) error {
	if err := s.sm.Transition(statemachine.Phase(session.Phase), to, session.ID); err != nil {
		return err
	}
	session.Phase = string(to)
	return nil
}

// sessionQA 反序列化会话中存储的问题与答案
func sessionQA(session *model.Session) ([]model.QuestionDescriptor, model.AnswerSet, error) {
	var questions []model.QuestionDescriptor
	if err := json.Unmarshal([]byte(session.QuestionsJSON), &questions); err != nil {
		return nil, nil, fmt.Errorf("decode session questions: %w", err)
	}
	answers := make(model.AnswerSet)
	if session.AnswersJSON != "" {
		if err := json.Unmarshal([]byte(session.AnswersJSON), &answers); err != nil {
			return nil, nil, fmt.Errorf("decode session answers: %w", err)
		}
	}
	return questions, answers, nil
}

// isAffirmative 判断消息是否包含开始问答的肯定词
func isAffirmative(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "yes") || strings.Contains(lower, "start")
}

func formatQuestion(q model.QuestionDescriptor, index, total int, prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(fmt.Sprintf("📋 **Question %d of %d:**\n\n%s\n\n", index+1, total, q.Question))
	if q.Required {
		b.WriteString("*(Required)*\n")
	} else {
		b.WriteString("*(Optional)*\n")
	}
	if q.Example != "" {
		b.WriteString(fmt.Sprintf("*Example: %s*\n", q.Example))
	}
	b.WriteString("\nPlease provide your answer:")
	return b.String()
}

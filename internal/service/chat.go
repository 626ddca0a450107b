package service

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/internal/pkg/llm"
	"github.com/openlegalassist/backend/internal/prompt"
)

// ChatTurn 对话历史中的一轮
type ChatTurn struct {
	Sender string `json:"sender"` // user, bot
	Text   string `json:"text"`
}

// 历史只保留最近几轮，避免上下文超限
const maxHistoryTurns = 5

// 补全服务未配置与调用失败是两种固定回复：
// 前者提示去配置，后者自我介绍并说明正处于基础模式
const (
	notConfiguredChatResponse = "I'm sorry, but I'm currently unable to process your request. " +
		"Please check that the completion service is properly configured."

	degradedChatResponse = "I'm your AI Legal Assistant! I can help you understand legal documents, " +
		"answer legal questions, and guide you through completing legal forms. However, I'm currently using " +
		"a basic analysis system. For the most accurate legal assistance, please ensure the completion " +
		"service is properly configured. How can I assist you today?"
)

// ChatService 法律助手聊天
type ChatService struct {
	completer llm.Completer
}

func NewChatService(completer llm.Completer) *ChatService {
	return &ChatService{completer: completer}
}

// Chat 发送一轮聊天并返回净化后的回复
// 历史截断到最近 maxHistoryTurns 轮；请求末尾追加直答指令抑制角色扮演输出
func (s *ChatService) Chat(ctx context.Context, message string, history []ChatTurn) (string, error) {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: prompt.ChatSystem})
	for _, turn := range history {
		role := llm.RoleAssistant
		if turn.Sender == "user" {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Text})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt.DirectAnswerInstruction})

	response, err := s.completer.Chat(ctx, messages, llm.Options{})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			klog.V(6).Info("补全服务未配置，使用固定聊天回复")
			return notConfiguredChatResponse, nil
		}
		if llm.Recoverable(err) {
			klog.V(6).Infof("补全服务不可用，使用固定聊天回复: %v", err)
			return degradedChatResponse, nil
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	return SanitizeChatResponse(response), nil
}

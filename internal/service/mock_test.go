package service

import (
	"context"
	"errors"

	"github.com/openlegalassist/backend/internal/pkg/llm"
)

// mockCompleter 测试用补全客户端，按字段注入行为
type mockCompleter struct {
	completeFunc func(ctx context.Context, prompt string, opts llm.Options) (string, error)
	chatFunc     func(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt, opts)
	}
	return "", errors.New("completeFunc not set")
}

func (m *mockCompleter) Chat(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	if m.chatFunc != nil {
		return m.chatFunc(ctx, messages, opts)
	}
	return "", errors.New("chatFunc not set")
}

// unavailableCompleter 所有调用都返回可降级的服务不可用错误
func unavailableCompleter() *mockCompleter {
	err := &llm.ProviderError{Kind: llm.KindUnavailable, Err: errors.New("connection refused")}
	return &mockCompleter{
		completeFunc: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
			return "", err
		},
		chatFunc: func(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
			return "", err
		},
	}
}

// failingCompleter 所有调用都返回给定的不可降级错误
func failingCompleter(err error) *mockCompleter {
	return &mockCompleter{
		completeFunc: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
			return "", err
		},
		chatFunc: func(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
			return "", err
		},
	}
}

// fixedCompleter 所有调用都返回同一段文本
func fixedCompleter(response string) *mockCompleter {
	return &mockCompleter{
		completeFunc: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
			return response, nil
		},
		chatFunc: func(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
			return response, nil
		},
	}
}

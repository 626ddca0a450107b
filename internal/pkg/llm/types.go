package llm

import "context"

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 一条对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options 采样参数，零值字段使用配置中的默认值
type Options struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
}

// Completer 文本补全服务
// Complete 发送单条提示词，Chat 发送带角色的消息序列
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/config"
)

// Client 基于 Eino OpenAI ChatModel 的补全服务客户端
// 未配置 API Key 时 chatModel 为 nil，所有调用返回可降级的 ProviderError
type Client struct {
	chatModel model.BaseChatModel
	defaults  Options
	timeout   time.Duration
}

// NewClient 创建补全客户端
// API Key 缺失不视为启动错误：服务以纯降级模式运行
func NewClient(cfg *config.Config) (*Client, error) {
	c := &Client{
		timeout: cfg.LLM.RequestTimeout,
		defaults: Options{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		},
	}

	if cfg.LLM.APIKey == "" {
		klog.Warning("未配置 OPENAI_API_KEY，补全服务进入降级模式")
		return c, nil
	}

	modelCfg := &openai.ChatModelConfig{
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
	}
	if cfg.LLM.APIURL != "" {
		modelCfg.BaseURL = cfg.LLM.APIURL
	}
	if cfg.LLM.MaxTokens > 0 {
		maxTokens := cfg.LLM.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}

	chatModel, err := openai.NewChatModel(context.Background(), modelCfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	c.chatModel = chatModel

	klog.V(6).Infof("补全客户端就绪: model=%s, baseURL=%s", cfg.LLM.Model, cfg.LLM.APIURL)
	return c, nil
}

// Complete 以单条用户消息发送提示词
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return c.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts)
}

// Chat 发送消息序列并返回补全文本
func (c *Client) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.chatModel == nil {
		return "", classify(ErrNotConfigured)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opts = c.applyDefaults(opts)
	input := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			input = append(input, schema.SystemMessage(m.Content))
		case RoleAssistant:
			input = append(input, schema.AssistantMessage(m.Content, nil))
		default:
			input = append(input, schema.UserMessage(m.Content))
		}
	}

	klog.V(6).Infof("发送补全请求: messages=%d, maxTokens=%d", len(input), opts.MaxTokens)
	resp, err := c.chatModel.Generate(ctx, input,
		model.WithMaxTokens(opts.MaxTokens),
		model.WithTemperature(opts.Temperature),
		model.WithTopP(opts.TopP),
	)
	if err != nil {
		klog.Errorf("补全请求失败: %v", err)
		return "", classify(err)
	}

	if resp.Content == "" {
		return "", errors.New("no response from completion provider")
	}

	return resp.Content, nil
}

func (c *Client) applyDefaults(opts Options) Options {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = c.defaults.MaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = c.defaults.Temperature
	}
	if opts.TopP == 0 {
		opts.TopP = c.defaults.TopP
	}
	return opts
}

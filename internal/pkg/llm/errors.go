package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 服务端错误的封闭分类
// 分类只在适配器边界做一次，调用方通过 errors.As 判断而非重复匹配错误文本
type Kind string

const (
	KindUnavailable Kind = "service_unavailable"
	KindAuth        Kind = "auth_error"
	KindValidation  Kind = "validation_error"
)

// ErrNotConfigured 未配置 API Key
var ErrNotConfigured = errors.New("completion provider is not configured")

// ProviderError 可被降级吸收的服务端错误
type ProviderError struct {
	Kind Kind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// 已知错误文本的有限匹配表，按序匹配首个命中者。
// 表外的任何错误原样向上传递，不做降级处理。
var classifyRules = []struct {
	substr string
	kind   Kind
}{
	{"expired", KindAuth},
	{"InvalidUserID.NotFound", KindAuth},
	{"UnauthorizedOperation", KindAuth},
	{"AccessDeniedException", KindAuth},
	{"ValidationException", KindValidation},
	{"invalid", KindValidation},
}

// classify 把已知的服务端错误包装成 ProviderError，其余错误原样返回
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotConfigured) {
		return &ProviderError{Kind: KindUnavailable, Err: err}
	}

	msg := err.Error()
	for _, rule := range classifyRules {
		if strings.Contains(msg, rule.substr) {
			return &ProviderError{Kind: rule.kind, Err: err}
		}
	}

	// 网络不可达类错误同样按服务不可用降级
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return &ProviderError{Kind: KindUnavailable, Err: err}
	}

	return err
}

// Recoverable 判断错误是否属于可用降级结果吸收的类别
func Recoverable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

package service

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/internal/analyzer"
	"github.com/openlegalassist/backend/internal/pkg/llm"
	"github.com/openlegalassist/backend/internal/prompt"
)

// AnalysisService 文档分析服务
// 补全服务不可用时退回确定性的规则分析，用户始终能拿到结构完整的分析报告
type AnalysisService struct {
	completer llm.Completer
}

func NewAnalysisService(completer llm.Completer) *AnalysisService {
	return &AnalysisService{completer: completer}
}

// Analyze 分析文档文本并返回分节的分析报告
// 服务端可降级错误（未配置、鉴权、校验）被规则分析吸收，其余错误向上传递
func (s *AnalysisService) Analyze(ctx context.Context, documentText string) (string, error) {
	analysis, err := s.completer.Complete(ctx, prompt.Analysis(documentText), llm.Options{})
	if err != nil {
		if llm.Recoverable(err) {
			klog.V(6).Infof("补全服务不可用，使用规则分析降级: %v", err)
			return analyzer.Analyze(documentText).Render(), nil
		}
		return "", fmt.Errorf("analyze document: %w", err)
	}

	return analysis, nil
}

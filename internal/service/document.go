package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/internal/model"
	"github.com/openlegalassist/backend/internal/pkg/llm"
	"github.com/openlegalassist/backend/internal/prompt"
	"github.com/openlegalassist/backend/internal/utils"
)

// DocumentService 根据分析与答案生成完成文档
type DocumentService struct {
	completer llm.Completer
}

func NewDocumentService(completer llm.Completer) *DocumentService {
	return &DocumentService{completer: completer}
}

// Generate 生成完成文档
// questions 可为 nil（无会话的直连接口），仅用于降级渲染时给答案配上问题文本。
// 可降级错误由确定性的拼装器吸收，输入相同则输出相同。
func (s *DocumentService) Generate(ctx context.Context, analysis string, answers model.AnswerSet, questions []model.QuestionDescriptor) (string, error) {
	document, err := s.completer.Complete(ctx, prompt.Document(analysis, utils.ToJSON(answers)), llm.Options{})
	if err != nil {
		if llm.Recoverable(err) {
			klog.V(6).Infof("补全服务不可用，使用拼装降级生成文档: %v", err)
			return composeDocument(analysis, answers, questions), nil
		}
		return "", fmt.Errorf("generate document: %w", err)
	}

	return document, nil
}

// composeDocument 降级路径的确定性文档拼装
// 按问题顺序（无问题时按 id 排序）列出答案，再附上原分析
func composeDocument(analysis string, answers model.AnswerSet, questions []model.QuestionDescriptor) string {
	var b strings.Builder
	b.WriteString("COMPLETED DOCUMENT\n")
	b.WriteString("==================\n\n")
	b.WriteString("Provided Information\n")
	b.WriteString("--------------------\n")

	if len(questions) > 0 {
		for _, q := range questions {
			if v, ok := answers[q.ID]; ok {
				b.WriteString(fmt.Sprintf("%s: %s\n", q.Question, formatAnswer(v)))
			}
		}
	} else {
		ids := make([]string, 0, len(answers))
		for id := range answers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			b.WriteString(fmt.Sprintf("%s: %s\n", id, formatAnswer(answers[id])))
		}
	}

	b.WriteString("\nDocument Analysis\n")
	b.WriteString("-----------------\n")
	b.WriteString(analysis)
	b.WriteString("\n\nThis document was assembled without the completion service. ")
	b.WriteString("Please have it reviewed by a qualified legal professional before use.")

	return b.String()
}

func formatAnswer(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

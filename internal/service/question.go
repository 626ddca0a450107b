package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/openlegalassist/backend/internal/model"
	"github.com/openlegalassist/backend/internal/pkg/llm"
	"github.com/openlegalassist/backend/internal/prompt"
	"github.com/openlegalassist/backend/internal/utils"
)

// QuestionService 根据分析报告生成补全表单问题
type QuestionService struct {
	completer llm.Completer
}

func NewQuestionService(completer llm.Completer) *QuestionService {
	return &QuestionService{completer: completer}
}

// 问题列表允许的字段类型
var allowedQuestionTypes = map[string]bool{
	"text": true, "textarea": true, "number": true, "date": true,
	"select": true, "radio": true, "checkbox": true, "email": true, "tel": true,
}

// Generate 请求补全服务生成问题列表
// 响应解析失败或形状不合法时换用固定三字段问题集，本操作永不失败于可降级错误，
// 只有非降级类的服务端错误才会向上传递
func (s *QuestionService) Generate(ctx context.Context, analysis string) ([]model.QuestionDescriptor, error) {
	response, err := s.completer.Complete(ctx, prompt.Questions(analysis), llm.Options{})
	if err != nil {
		if llm.Recoverable(err) {
			klog.V(6).Infof("补全服务不可用，使用默认问题集: %v", err)
			return model.DefaultQuestions(), nil
		}
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions, err := parseQuestions(response)
	if err != nil {
		klog.V(6).Infof("问题列表解析失败，使用默认问题集: %v", err)
		return model.DefaultQuestions(), nil
	}

	return questions, nil
}

// parseQuestions 把模型输出解析为问题列表并校验形状
// 模型偶尔只回一个 JSON 对象而非数组，按单问题列表接受
// id 在列表内必须唯一且非空，非法类型归一为 text
func parseQuestions(response string) ([]model.QuestionDescriptor, error) {
	raw := utils.ExtractJSONArray(response)

	var questions []model.QuestionDescriptor
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		var single model.QuestionDescriptor
		if objErr := json.Unmarshal([]byte(utils.ExtractJSON(response)), &single); objErr != nil {
			return nil, fmt.Errorf("malformed question JSON: %w", err)
		}
		questions = []model.QuestionDescriptor{single}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("empty question list")
	}

	seen := make(map[string]bool)
	for i := range questions {
		q := &questions[i]
		q.ID = strings.TrimSpace(q.ID)
		q.Question = strings.TrimSpace(q.Question)
		if q.ID == "" || q.Question == "" {
			return nil, fmt.Errorf("question %d missing id or text", i)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if !allowedQuestionTypes[q.Type] {
			q.Type = "text"
		}
	}

	return questions, nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 测试问题解析 - 模型输出包在说明文字和代码块里
func TestGenerateQuestions_WrappedJSON(t *testing.T) {
	response := "Here are the questions:\n```json\n" +
		`[{"id": "salary", "question": "What is the monthly salary?", "type": "number", "required": true}]` +
		"\n```\nLet me know if you need more."
	svc := NewQuestionService(fixedCompleter(response))

	questions, err := svc.Generate(context.Background(), "analysis")

	assert.NoError(t, err)
	assert.Equal(t, 1, len(questions), "应解析出一个问题")
	assert.Equal(t, "salary", questions[0].ID)
	assert.Equal(t, "number", questions[0].Type)
	assert.True(t, questions[0].Required)
}

// 测试问题解析 - 只回单个 JSON 对象时按单问题列表接受
func TestGenerateQuestions_SingleObjectAccepted(t *testing.T) {
	response := `{"id": "full_name", "question": "What is your full name?", "type": "text", "required": true}`
	svc := NewQuestionService(fixedCompleter(response))

	questions, err := svc.Generate(context.Background(), "analysis")

	assert.NoError(t, err)
	assert.Equal(t, 1, len(questions), "单个对象应作为单问题列表接受")
	assert.Equal(t, "full_name", questions[0].ID)
}

// 测试问题解析 - 未知字段类型归一为 text
func TestGenerateQuestions_UnknownTypeNormalized(t *testing.T) {
	response := `[{"id": "start_date", "question": "When do you start?", "type": "datetimepicker", "required": true}]`
	svc := NewQuestionService(fixedCompleter(response))

	questions, err := svc.Generate(context.Background(), "analysis")

	assert.NoError(t, err)
	assert.Equal(t, "text", questions[0].Type, "未知类型应归一为 text")
}

// 测试问题解析 - 各种非法形状都换用默认问题集
func TestGenerateQuestions_MalformedFallsBack(t *testing.T) {
	cases := map[string]string{
		"prose only":     "I cannot generate questions for this document.",
		"truncated json": `[{"id": "full_name", "question": "Name?"`,
		"empty array":    `[]`,
		"duplicate ids":  `[{"id": "a", "question": "Q1?"}, {"id": "a", "question": "Q2?"}]`,
		"blank id":       `[{"id": "  ", "question": "Q1?"}]`,
		"blank question": `[{"id": "a", "question": ""}]`,
	}

	for name, response := range cases {
		svc := NewQuestionService(fixedCompleter(response))

		questions, err := svc.Generate(context.Background(), "analysis")

		assert.NoError(t, err, name)
		assert.Equal(t, 3, len(questions), "%s: 应返回默认问题集", name)
		assert.Equal(t, "full_name", questions[0].ID, name)
		assert.Equal(t, "ic_number", questions[1].ID, name)
		assert.Equal(t, "address", questions[2].ID, name)
	}
}

// 测试补全服务不可用时直接返回默认问题集
func TestGenerateQuestions_UnavailableFallsBack(t *testing.T) {
	svc := NewQuestionService(unavailableCompleter())

	questions, err := svc.Generate(context.Background(), "analysis")

	assert.NoError(t, err, "降级路径不应报错")
	assert.Equal(t, 3, len(questions))
	assert.Equal(t, "full_name", questions[0].ID)
}

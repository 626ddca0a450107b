package model

// QuestionDescriptor 描述文档补全表单中的一个字段
// ID 在同一份问题列表内必须唯一，是与答案集合关联的键
type QuestionDescriptor struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Type       string   `json:"type"` // text, textarea, number, date, select, radio, checkbox, email, tel
	Required   bool     `json:"required"`
	Validation string   `json:"validation,omitempty"`
	Example    string   `json:"example,omitempty"`
	Options    []string `json:"options,omitempty"` // 仅 select/radio/checkbox
}

// AnswerSet 按问题 ID 收集的答案
// 值通常是字符串，checkbox 类型可以是字符串序列
type AnswerSet map[string]any

// DefaultQuestions 问题生成降级时使用的固定三字段问题集
// 结构恒定合法，是"降级但必定成功"契约的锚点
func DefaultQuestions() []QuestionDescriptor {
	return []QuestionDescriptor{
		{
			ID:         "full_name",
			Question:   "What is your full name?",
			Type:       "text",
			Required:   true,
			Validation: "Must be at least 2 words",
			Example:    "Ahmad bin Abdullah",
		},
		{
			ID:         "ic_number",
			Question:   "What is your IC number?",
			Type:       "text",
			Required:   true,
			Validation: "Must be 12 digits",
			Example:    "123456789012",
		},
		{
			ID:         "address",
			Question:   "What is your address?",
			Type:       "textarea",
			Required:   true,
			Validation: "Complete address required",
			Example:    "123 Jalan ABC, Taman XYZ, 12345 Kuala Lumpur",
		},
	}
}

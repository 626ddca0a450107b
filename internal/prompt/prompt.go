// Package prompt 集中存放发往补全服务的固定提示词模板
// 模板是数据不是逻辑：只做占位替换，不含条件分支
package prompt

import (
	"fmt"
	"strings"
)

const analysisTemplate = `You are a legal document analyzer. Analyze the following legal document and provide:

1. Document Summary (2-3 sentences)
2. Document Type (e.g., Employment Contract, Rental Agreement, etc.)
3. Key Parties Involved
4. Important Terms and Conditions
5. Potential Risks or Concerns
6. Key Dates and Deadlines
7. Required Information for Completion (what needs to be filled in)

Document Text:
{{document}}

Please provide a comprehensive analysis in a structured format.`

const questionsTemplate = `Based on this legal document analysis, generate a list of specific questions that need to be answered to complete the document.

Analysis: {{analysis}}

For each question, provide:
1. The question text
2. The field name (for form filling)
3. The field type (text, date, number, select, etc.)
4. Whether it's required or optional
5. Any validation rules or examples

Format as JSON array with this structure:
[
  {
    "id": "field_name",
    "question": "What is your full name?",
    "type": "text",
    "required": true,
    "validation": "Must be at least 2 words",
    "example": "Ahmad bin Abdullah"
  }
]`

const documentTemplate = `Based on the original document analysis and the provided answers, generate a completed legal document.

Original Analysis: {{analysis}}

User Answers: {{answers}}

Please generate a properly formatted legal document with all the information filled in. Make sure to:
1. Use proper legal language and formatting
2. Include all the original terms and conditions
3. Fill in all the provided information appropriately
4. Maintain the document structure and legal validity
5. Use Malaysian legal terminology where appropriate

Generate the complete document text.`

// ChatSystem 聊天的系统提示词
const ChatSystem = `You are a friendly and knowledgeable AI Legal Assistant helping Malaysian citizens understand legal matters. Respond naturally and conversationally, like a helpful friend who happens to know about law.

IMPORTANT:
- Respond directly to the user's question or request
- Do not ask and answer your own questions in the same response
- Do not create dialogue between multiple speakers
- Do not simulate conversations or Q&A sessions
- Give a direct, helpful response to what the user asked

Key guidelines:
- Be conversational and approachable, not formal or robotic
- Explain legal concepts in simple, everyday language
- Use examples and analogies when helpful
- Ask follow-up questions to better understand what they need
- Be empathetic and understanding of their concerns
- Keep responses concise but comprehensive
- When appropriate, suggest consulting a legal professional for complex matters

Remember: You provide general information only, not specific legal advice. Be helpful, clear, and human-like in your responses.`

// DirectAnswerInstruction 追加在每次聊天请求末尾，抑制模型的角色扮演式输出
const DirectAnswerInstruction = `Please respond directly without using "Human:" or "Assistant:" labels. Just give me a natural response.`

// Analysis 生成文档分析提示词
func Analysis(documentText string) string {
	return substitute(analysisTemplate, map[string]string{"document": documentText})
}

// Questions 生成问题列表提示词
func Questions(analysis string) string {
	return substitute(questionsTemplate, map[string]string{"analysis": analysis})
}

// Document 生成文档补全提示词，answers 为已序列化的 JSON
func Document(analysis, answers string) string {
	return substitute(documentTemplate, map[string]string{
		"analysis": analysis,
		"answers":  answers,
	})
}

func substitute(template string, values map[string]string) string {
	result := template
	for key, value := range values {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{%s}}", key), value)
	}
	return result
}

package analyzer

import "strings"

// 渲染上限只约束展示条数，不影响检测逻辑
const maxRenderedItems = 5

// Render 把分析结果渲染为固定分节的 Markdown 报告，
// 结构与模型生成的分析保持一致，下游无需区分两种来源
func (r *Report) Render() string {
	var b strings.Builder

	b.WriteString("## 📋 Document Analysis\n\n")
	b.WriteString("### 📄 Document Summary\n")
	b.WriteString(r.Summary + "\n\n")
	b.WriteString("### 🏷️ Document Type\n")
	b.WriteString(r.DocumentType + "\n\n")
	b.WriteString("### 👥 Key Parties Involved\n")
	b.WriteString(renderList(r.Parties) + "\n\n")
	b.WriteString("### 📝 Important Terms and Conditions\n")
	b.WriteString(renderList(r.KeyTerms) + "\n\n")
	b.WriteString("### ⚠️ Potential Risks or Concerns\n")
	b.WriteString(renderList(r.Risks) + "\n\n")
	b.WriteString("### 📅 Key Dates and Deadlines\n")
	b.WriteString(renderList(r.Dates) + "\n\n")
	b.WriteString("### ✅ Required Information for Completion\n")
	b.WriteString(renderList(r.RequiredInfo) + "\n\n")
	b.WriteString("---\n\n")
	b.WriteString("**⚠️ Important Note:** This is an AI-generated analysis based on document content. " +
		"For detailed legal advice, please consult with a qualified legal professional.")

	return b.String()
}

func renderList(items []string) string {
	if len(items) > maxRenderedItems {
		items = items[:maxRenderedItems]
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

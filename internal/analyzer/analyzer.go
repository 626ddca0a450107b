package analyzer

import (
	"regexp"
	"strings"
)

// Report 规则分析结果
// 所有字段保证非空：检测不到内容时填充固定占位项，下游渲染不会遇到空段落
type Report struct {
	Summary      string   `json:"summary"`
	DocumentType string   `json:"document_type"`
	Parties      []string `json:"parties"`
	KeyTerms     []string `json:"key_terms"`
	Risks        []string `json:"risks"`
	Dates        []string `json:"dates"`
	Amounts      []string `json:"amounts"`
	RequiredInfo []string `json:"required_info"`
}

// typeRule 文档类型分类规则，keywords 任一命中即判定为该类型
type typeRule struct {
	keywords []string
	docType  string
}

// 分类规则按优先级排列，首个命中者生效。
// 同一文本可能命中多条规则，顺序不可调整。
var typeRules = []typeRule{
	{[]string{"employment", "job", "salary"}, "Employment Contract"},
	{[]string{"rent", "lease", "tenant"}, "Rental Agreement"},
	{[]string{"purchase", "buy", "sale"}, "Purchase Agreement"},
	{[]string{"loan", "credit", "borrow"}, "Loan Agreement"},
	{[]string{"partnership", "business", "company"}, "Partnership Agreement"},
	{[]string{"service", "consulting", "contractor"}, "Service Agreement"},
}

// keywordRule 关键词到固定结论的规则，term/risk/required-info 三类共用
type keywordRule struct {
	keywords []string
	item     string
}

var termRules = []keywordRule{
	{[]string{"payment", "fee", "cost"}, "Payment terms and financial obligations"},
	{[]string{"termination", "cancel", "end"}, "Termination conditions and procedures"},
	{[]string{"liability", "responsibility", "obligation"}, "Liability and responsibility clauses"},
	{[]string{"confidential", "privacy", "secret"}, "Confidentiality and privacy provisions"},
	{[]string{"penalty", "fine", "breach"}, "Penalty and breach of contract clauses"},
}

var riskRules = []keywordRule{
	{[]string{"penalty", "fine"}, "Potential financial penalties for non-compliance"},
	{[]string{"termination", "cancel"}, "Risk of contract termination under certain conditions"},
	{[]string{"liability", "responsible"}, "Potential liability and responsibility obligations"},
	{[]string{"confidential", "secret"}, "Confidentiality obligations and potential legal consequences"},
}

var requiredInfoRules = []keywordRule{
	{[]string{"name", "signature"}, "Full names and signatures of all parties"},
	{[]string{"address", "location"}, "Complete addresses and contact information"},
	{[]string{"date", "time"}, "Specific dates and time-sensitive information"},
	{[]string{"amount", "payment"}, "Financial amounts and payment details"},
}

var defaultTerms = []string{
	"Review all terms and conditions carefully",
	"Pay attention to payment terms, deadlines, and obligations",
	"Check for any penalty clauses or termination conditions",
}

var defaultRisks = []string{
	"Ensure you understand all obligations before agreeing",
	"Consider consulting with a legal professional for complex terms",
	"Verify all dates, amounts, and conditions are accurate",
}

var defaultRequiredInfo = []string{
	"Full names and contact information",
	"Specific dates and amounts",
	"Any additional details mentioned in the document",
}

const (
	placeholderParty = "Parties to be identified from document content"
	placeholderDate  = "Review document for specific dates and deadlines"
)

// 当事人抽取：一是 party/between 等连接词后的两词人名，
// 二是 and/& 之前的两到三词人名，两个模式都忽略大小写
var partyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:party|between|agreement between)\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+(?:and|&)`),
}

var partyConnectorPattern = regexp.MustCompile(`(?i)(?:party|between|agreement between|and|&)`)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})\b`),
	regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{4}\b`),
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)RM\s*[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)\b\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s*(?:dollars?|ringgit|usd|myr)\b`),
}

// Analyze 对原始文本做确定性的规则分析
// 相同输入必产生相同输出，无随机性且不依赖任何外部服务
func Analyze(text string) *Report {
	lower := strings.ToLower(text)

	report := &Report{
		DocumentType: classifyDocumentType(lower),
		Parties:      extractParties(text),
		Dates:        extractMatches(text, datePatterns),
		Amounts:      extractMatches(text, amountPatterns),
	}

	report.KeyTerms = applyRules(lower, termRules, defaultTerms)
	report.Risks = applyRules(lower, riskRules, defaultRisks)
	report.RequiredInfo = applyRules(lower, requiredInfoRules, defaultRequiredInfo)

	if len(report.Parties) == 0 {
		report.Parties = []string{placeholderParty}
	}
	if len(report.Dates) == 0 {
		report.Dates = []string{placeholderDate}
	}

	report.Summary = composeSummary(report)
	return report
}

func classifyDocumentType(lower string) string {
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.docType
			}
		}
	}
	return "Legal Document"
}

// extractParties 在原文（保留大小写）上套用两组人名模式，
// 按出现顺序收集，剔除连接词后保留长度大于 3 的名字，不跨模式去重
func extractParties(text string) []string {
	var parties []string
	for _, pattern := range partyPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			name := strings.TrimSpace(partyConnectorPattern.ReplaceAllString(match, ""))
			if len(name) > 3 {
				parties = append(parties, name)
			}
		}
	}
	return parties
}

// extractMatches 依次套用各模式并按匹配原文去重，保留首见顺序。
// 同一日期的不同写法（"2024" 与 "January 1, 2024"）视为不同匹配，均保留。
func extractMatches(text string, patterns []*regexp.Regexp) []string {
	var result []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if !seen[match] {
				seen[match] = true
				result = append(result, match)
			}
		}
	}
	return result
}

func applyRules(lower string, rules []keywordRule, fallback []string) []string {
	var items []string
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				items = append(items, rule.item)
				break
			}
		}
	}
	if len(items) == 0 {
		items = append(items, fallback...)
	}
	return items
}

func composeSummary(report *Report) string {
	var b strings.Builder
	b.WriteString("This is a " + strings.ToLower(report.DocumentType) + " that requires careful review. ")
	if len(report.Amounts) > 0 {
		b.WriteString("The document involves financial terms including " + joinLeading(report.Amounts, 2) + ". ")
	}
	if len(report.Dates) > 0 && report.Dates[0] != placeholderDate {
		b.WriteString("Important dates include " + joinLeading(report.Dates, 2) + ". ")
	}
	b.WriteString("Please review all terms carefully before signing.")
	return b.String()
}

func joinLeading(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, " and ")
}

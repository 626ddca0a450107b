package service

import (
	"regexp"
	"strings"
)

var (
	roleLabelLinePattern = regexp.MustCompile(`(?m)^.*?(Human:|Assistant:)\s*`)
	roleLabelPattern     = regexp.MustCompile(`(?m)^(Human|Assistant):\s*`)
	danglingParenPattern = regexp.MustCompile(`\s*\([^)]*$`)
)

// SanitizeChatResponse 清理聊天补全输出中的自演对话痕迹
// 步骤：去掉角色标签行；问号超过一个视为模型在自问自答，截断到首个问号；
// 去掉末尾未闭合的括号片段；确保以终结标点收尾。
// 这些是尽力而为的启发式：含有反问句的正常长回答也会被截断，属于已知取舍。
func SanitizeChatResponse(text string) string {
	if text == "" {
		return text
	}

	text = roleLabelLinePattern.ReplaceAllString(text, "")
	text = roleLabelPattern.ReplaceAllString(text, "")

	if strings.Count(text, "?") > 1 {
		text = text[:strings.Index(text, "?")+1]
	}

	text = danglingParenPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if text != "" && !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}

	return text
}

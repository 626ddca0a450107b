package utils

import (
	"encoding/json"

	"k8s.io/klog/v2"
)

// ExtractJSON 从文本中提取最外层 JSON 对象
func ExtractJSON(content string) string {
	return extractBalanced(content, '{', '}')
}

// ExtractJSONArray 从文本中提取最外层 JSON 数组
// 模型常把 JSON 包在说明文字或代码块里，取首个配平的 [...] 片段
func ExtractJSONArray(content string) string {
	return extractBalanced(content, '[', ']')
}

func extractBalanced(content string, open, close rune) string {
	start := -1
	end := -1
	depth := 0

	for i, ch := range content {
		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 && start != -1 {
				end = i + 1
				break
			}
		}
	}

	if start >= 0 && end > start {
		return content[start:end]
	}

	return content
}

func ToJSON(v any) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		klog.Errorf("JSON序列化失败: %v", err)
		return ""
	}
	return string(jsonData)
}

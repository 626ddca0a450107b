package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"k8s.io/klog/v2"
)

var (
	// ErrUnsupportedFormat 文件类型不在支持范围内
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrExtractionFailed 解码失败或提取结果为空白
	ErrExtractionFailed = errors.New("could not extract text from document")
)

// Extract 按声明的扩展名从文件中提取纯文本
// fileType 为不带点的小写扩展名（pdf/doc/docx/txt）
// 提取结果为空白时视为失败，调用方必须拒绝该请求而非继续处理空文本
func Extract(path, fileType string) (string, error) {
	var text string
	var err error

	switch strings.ToLower(fileType) {
	case "pdf":
		text, err = extractPDF(path)
	case "doc", "docx":
		text, err = extractDocx(path)
	case "txt":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}

	if err != nil {
		klog.Errorf("文本提取失败: type=%s, err=%v", fileType, err)
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrExtractionFailed
	}

	return text, nil
}

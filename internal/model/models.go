package model

import (
	"time"
)

// Session 一次对话的文档补全会话
// 每个会话同一时刻只有一个在途操作，问题与答案以 JSON 列存储
type Session struct {
	ID            string    `json:"id" gorm:"primaryKey;size:64"` // UUID
	Phase         string    `json:"phase" gorm:"size:50;default:awaiting_document"` // idle, awaiting_document, analyzing, awaiting_consent, in_qa, generating_document, done
	Analysis      string    `json:"analysis" gorm:"type:text"`
	DocumentType  string    `json:"document_type" gorm:"size:50"`
	OriginalName  string    `json:"original_name" gorm:"size:255"`
	QuestionsJSON string    `json:"-" gorm:"type:text"`
	AnswersJSON   string    `json:"-" gorm:"type:text"`
	QuestionIndex int       `json:"question_index" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GeneratedDocument 已生成的完成文档，供下载接口取回
type GeneratedDocument struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"` // UUID
	SessionID    string    `json:"session_id" gorm:"index;size:64"`
	OriginalName string    `json:"original_name" gorm:"size:255"`
	Content      string    `json:"content" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

package repository

import (
	"errors"

	"github.com/openlegalassist/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

type SessionRepository interface {
	Create(session *model.Session) error
	Get(id string) (*model.Session, error)
	Save(session *model.Session) error
	Delete(id string) error
}

type GeneratedDocumentRepository interface {
	Create(doc *model.GeneratedDocument) error
	Get(id string) (*model.GeneratedDocument, error)
	GetBySession(sessionID string) ([]model.GeneratedDocument, error)
	Delete(id string) error
}

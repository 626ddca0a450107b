package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openlegalassist/backend/internal/model"
)

type generatedDocumentRepository struct {
	db *gorm.DB
}

func NewGeneratedDocumentRepository(db *gorm.DB) GeneratedDocumentRepository {
	return &generatedDocumentRepository{db: db}
}

func (r *generatedDocumentRepository) Create(doc *model.GeneratedDocument) error {
	return r.db.Create(doc).Error
}

func (r *generatedDocumentRepository) Get(id string) (*model.GeneratedDocument, error) {
	var doc model.GeneratedDocument
	err := r.db.First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *generatedDocumentRepository) GetBySession(sessionID string) ([]model.GeneratedDocument, error) {
	var docs []model.GeneratedDocument
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at").
		Find(&docs).Error
	return docs, err
}

func (r *generatedDocumentRepository) Delete(id string) error {
	return r.db.Delete(&model.GeneratedDocument{}, "id = ?", id).Error
}

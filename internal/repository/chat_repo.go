package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/webforge-ai/webforge/internal/models"
)

// ChatRepository defines the interface for chat metadata persistence.
type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) (*models.Chat, error)
	GetAll(ctx context.Context) ([]*models.Chat, error)
	FindByAppID(ctx context.Context, appID uint) ([]*models.Chat, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) (*models.Chat, error) {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return chat, nil
}

func (r *chatRepository) GetAll(ctx context.Context) ([]*models.Chat, error) {
	var chats []*models.Chat
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *chatRepository) FindByAppID(ctx context.Context, appID uint) ([]*models.Chat, error) {
	var chats []*models.Chat
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Order("created_at DESC").Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

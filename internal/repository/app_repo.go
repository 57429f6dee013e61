package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/webforge-ai/webforge/internal/models"
)

// AppRepository defines the interface for app metadata persistence.
type AppRepository interface {
	Create(ctx context.Context, app *models.App) (*models.App, error)
	FindByID(ctx context.Context, id uint) (*models.App, error)
	GetAll(ctx context.Context) ([]*models.App, error)
	Delete(ctx context.Context, id uint) error
}

type appRepository struct {
	db *gorm.DB
}

func NewAppRepository(db *gorm.DB) AppRepository {
	return &appRepository{db: db}
}

func (r *appRepository) Create(ctx context.Context, app *models.App) (*models.App, error) {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *appRepository) FindByID(ctx context.Context, id uint) (*models.App, error) {
	var app models.App
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *appRepository) GetAll(ctx context.Context) ([]*models.App, error) {
	var apps []*models.App
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *appRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.App{}, "id = ?", id).Error
}

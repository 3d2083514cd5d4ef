package store

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

// MenuStore persists catalog items. Deletes are soft.
type MenuStore struct {
	db *gorm.DB
}

func NewMenuStore(db *gorm.DB) *MenuStore {
	return &MenuStore{db: db}
}

// List returns the live catalog in insertion order.
func (s *MenuStore) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).Order("id asc").Find(&items).Error
	return items, err
}

func (s *MenuStore) FindByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MenuStore) Create(ctx context.Context, item *models.MenuItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

// Save writes every mutable column, including nil description and image.
func (s *MenuStore) Save(ctx context.Context, item *models.MenuItem) error {
	return s.db.WithContext(ctx).Model(item).
		Select("Name", "Description", "Price", "ImageURL").
		Updates(item).Error
}

func (s *MenuStore) ClearImage(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("id = ?", id).
		Update("image_url", nil).Error
}

func (s *MenuStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

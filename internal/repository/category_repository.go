package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"time-logger/internal/model"
	"time-logger/internal/timelog"
)

// CategoryRepository manages time categories. It also serves as the
// timelog.CategoryStore.
type CategoryRepository struct {
	db *gorm.DB
}

var _ timelog.CategoryStore = (*CategoryRepository)(nil)

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetOrCreate(ctx context.Context, userID uint, title string) (*model.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("category title is required")
	}

	category, err := r.FindByTitle(ctx, userID, title)
	if err != nil {
		return nil, err
	}
	if category != nil {
		return category, nil
	}

	category = &model.Category{UserID: userID, Title: title}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// FindByTitle matches the title exactly. It returns nil when nothing matches.
func (r *CategoryRepository) FindByTitle(ctx context.Context, userID uint, title string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("user_id = ? AND title = ?", userID, title).First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

// ListByUser returns categories in creation order.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) CategoriesByUser(ctx context.Context, userID uint) ([]timelog.CategoryRecord, error) {
	categories, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	records := make([]timelog.CategoryRecord, 0, len(categories))
	for _, c := range categories {
		records = append(records, timelog.CategoryRecord{ID: c.ID, Title: c.Title})
	}
	return records, nil
}

func (r *CategoryRepository) CategoryByTitle(ctx context.Context, userID uint, title string) (*timelog.CategoryRecord, error) {
	category, err := r.FindByTitle(ctx, userID, title)
	if err != nil || category == nil {
		return nil, err
	}
	return &timelog.CategoryRecord{ID: category.ID, Title: category.Title}, nil
}

package repository

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

// Custom prompts below this length are rejected; they are meant to replace
// the whole default analysis template.
const minCustomPromptLen = 10

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) GetCategory(ctx context.Context, id string) (*models.CustomCategory, error) {
	var category models.CustomCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "get category %s", id)
	}
	if err := r.loadSourceIDs(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepo) ListCategories(ctx context.Context, enabledOnly bool) ([]models.CustomCategory, error) {
	q := r.db.WithContext(ctx).Model(&models.CustomCategory{})
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	var categories []models.CustomCategory
	if err := q.Order("name").Find(&categories).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "list categories")
	}
	for i := range categories {
		if err := r.loadSourceIDs(ctx, &categories[i]); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

// SaveCategory creates or updates a category together with its source
// associations. The category row and the join rows are written in one
// transaction so a crash cannot leave a half-updated membership.
func (r *CategoryRepo) SaveCategory(ctx context.Context, category *models.CustomCategory) error {
	if utf8.RuneCountInString(category.CustomPrompt) < minCustomPromptLen {
		return apperr.New(apperr.KindConfiguration,
			"custom prompt must be at least %d characters", minCustomPromptLen)
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
		category.CreatedAt = time.Now()
	}
	category.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(category).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.CategorySource{}).Error; err != nil {
			return err
		}
		for _, sourceID := range category.SourceIDs {
			join := models.CategorySource{CategoryID: category.ID, SourceID: sourceID}
			if err := tx.Create(&join).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return apperr.Wrap(apperr.KindPersistence, err, "save category %s", category.Name)
}

func (r *CategoryRepo) DeleteCategory(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.CategorySource{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.CustomCategory{}).Error
	})
	return apperr.Wrap(apperr.KindPersistence, err, "delete category %s", id)
}

func (r *CategoryRepo) loadSourceIDs(ctx context.Context, category *models.CustomCategory) error {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.CategorySource{}).
		Where("category_id = ?", category.ID).
		Order("source_id").
		Pluck("source_id", &ids).Error
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, err, "load category sources %s", category.ID)
	}
	category.SourceIDs = ids
	return nil
}

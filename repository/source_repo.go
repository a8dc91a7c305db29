package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

type SourceRepo struct {
	db *gorm.DB
}

func NewSourceRepo(db *gorm.DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// SourcesByIndustry resolves the enabled sources of one industry bucket.
func (r *SourceRepo) SourcesByIndustry(ctx context.Context, industry string) ([]models.Source, error) {
	var sources []models.Source
	err := r.db.WithContext(ctx).
		Where("industry = ? AND enabled = ?", industry, true).
		Order("name").
		Find(&sources).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "sources by industry %s", industry)
	}
	return sources, nil
}

// EnabledSources returns every source eligible for ingestion.
func (r *SourceRepo) EnabledSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	err := r.db.WithContext(ctx).Where("enabled = ?", true).Order("name").Find(&sources).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "enabled sources")
	}
	return sources, nil
}

// ListSources returns every source regardless of enabled state.
func (r *SourceRepo) ListSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	err := r.db.WithContext(ctx).Order("industry, name").Find(&sources).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "list sources")
	}
	return sources, nil
}

// CategorySources resolves the join table for one custom category,
// returning only enabled sources.
func (r *SourceRepo) CategorySources(ctx context.Context, categoryID string) ([]models.Source, error) {
	var sources []models.Source
	err := r.db.WithContext(ctx).
		Joins("JOIN category_sources cs ON cs.source_id = sources.id").
		Where("cs.category_id = ? AND sources.enabled = ?", categoryID, true).
		Order("sources.name").
		Find(&sources).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "category sources %s", categoryID)
	}
	return sources, nil
}

func (r *SourceRepo) GetSource(ctx context.Context, id string) (*models.Source, error) {
	var source models.Source
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "get source %s", id)
	}
	return &source, nil
}

func (r *SourceRepo) CreateSource(ctx context.Context, source *models.Source) error {
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	if source.Type == "" {
		source.Type = models.SourceTypeRSS
	}
	err := r.db.WithContext(ctx).Create(source).Error
	return apperr.Wrap(apperr.KindPersistence, err, "create source %s", source.Name)
}

func (r *SourceRepo) UpdateSource(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Source{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindPersistence, res.Error, "update source %s", id)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindPersistence, "update source %s: not found", id)
	}
	return nil
}

func (r *SourceRepo) DeleteSource(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_id = ?", id).Delete(&models.CategorySource{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Source{}).Error
	})
	return apperr.Wrap(apperr.KindPersistence, err, "delete source %s", id)
}

// RecordFetchResult updates a source's fetch bookkeeping after one
// ingestion pass. Success clears the error state; failure appends to it.
func (r *SourceRepo) RecordFetchResult(ctx context.Context, id string, fetchedAt time.Time, fetchErr error) error {
	fields := map[string]any{"last_fetched_at": fetchedAt}
	if fetchErr != nil {
		fields["last_error"] = fetchErr.Error()
		fields["error_count"] = gorm.Expr("error_count + 1")
	} else {
		fields["last_error"] = ""
	}
	err := r.db.WithContext(ctx).Model(&models.Source{}).Where("id = ?", id).Updates(fields).Error
	return apperr.Wrap(apperr.KindPersistence, err, "record fetch result %s", id)
}

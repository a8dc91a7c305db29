package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

type TrendInsightRepo struct {
	db *gorm.DB
}

func NewTrendInsightRepo(db *gorm.DB) *TrendInsightRepo {
	return &TrendInsightRepo{db: db}
}

// InsertInsight stores a finished trend insight. Insights are never updated.
func (r *TrendInsightRepo) InsertInsight(ctx context.Context, insight *models.TrendInsight) error {
	err := r.db.WithContext(ctx).Create(insight).Error
	return apperr.Wrap(apperr.KindPersistence, err, "insert trend insight %s", insight.ID)
}

func (r *TrendInsightRepo) GetInsight(ctx context.Context, id string) (*models.TrendInsight, error) {
	var insight models.TrendInsight
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&insight).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "get trend insight %s", id)
	}
	return &insight, nil
}

// ListInsights returns insights newest-first, optionally filtered by industry.
func (r *TrendInsightRepo) ListInsights(ctx context.Context, industry string, limit, offset int) ([]models.TrendInsight, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	q := r.db.WithContext(ctx).Model(&models.TrendInsight{})
	if industry != "" {
		q = q.Where("industry = ?", industry)
	}
	var insights []models.TrendInsight
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&insights).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "list trend insights")
	}
	return insights, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

type AnalysisRepo struct {
	db *gorm.DB
}

func NewAnalysisRepo(db *gorm.DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

// InsertAnalysis stores a finished report. Analyses are never updated.
func (r *AnalysisRepo) InsertAnalysis(ctx context.Context, analysis *models.Analysis) error {
	err := r.db.WithContext(ctx).Create(analysis).Error
	return apperr.Wrap(apperr.KindPersistence, err, "insert analysis %s", analysis.ID)
}

func (r *AnalysisRepo) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "get analysis %s", id)
	}
	return &analysis, nil
}

// ListAnalyses returns reports newest-first.
func (r *AnalysisRepo) ListAnalyses(ctx context.Context, limit int) ([]models.Analysis, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&analyses).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "list analyses")
	}
	return analyses, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

// ArticleFilters narrows QueryArticles results. Zero values mean "no filter";
// Archived is a pointer so false can be filtered on explicitly.
type ArticleFilters struct {
	Industry string
	Archived *bool
	Limit    int
	Offset   int
}

const defaultQueryLimit = 100

type ArticleRepo struct {
	db *gorm.DB
}

func NewArticleRepo(db *gorm.DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// upsertColumns are the fields refreshed when an already-known URL is
// re-ingested. Archived and CreatedAt are deliberately left alone.
var upsertColumns = []string{"title", "url", "content", "published_at", "source_name", "industry", "tags"}

// UpsertArticle inserts the article or, when its id already exists,
// refreshes the content columns in place.
func (r *ArticleRepo) UpsertArticle(ctx context.Context, article *models.Article) error {
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(article).Error
	return apperr.Wrap(apperr.KindPersistence, err, "upsert article %s", article.ID)
}

// UpsertArticles persists a batch one row at a time, stopping at the first
// storage failure.
func (r *ArticleRepo) UpsertArticles(ctx context.Context, articles []models.Article) error {
	for i := range articles {
		if err := r.UpsertArticle(ctx, &articles[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetArticle returns nil without error when the id is unknown.
func (r *ArticleRepo) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "get article %s", id)
	}
	return &article, nil
}

// QueryArticles returns articles newest-first by publish time.
func (r *ArticleRepo) QueryArticles(ctx context.Context, filters ArticleFilters) ([]models.Article, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	q := r.db.WithContext(ctx).Model(&models.Article{})
	if filters.Industry != "" {
		q = q.Where("industry = ?", filters.Industry)
	}
	if filters.Archived != nil {
		q = q.Where("archived = ?", *filters.Archived)
	}

	var articles []models.Article
	err := q.Order("published_at DESC").Limit(limit).Offset(filters.Offset).Find(&articles).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "query articles")
	}
	return articles, nil
}

// PatchArticle updates only the supplied fields, leaving the rest untouched.
func (r *ArticleRepo) PatchArticle(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindPersistence, res.Error, "patch article %s", id)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindPersistence, "patch article %s: not found", id)
	}
	return nil
}

// ArchiveArticles flips archived on the given ids. Data stays in place.
func (r *ArticleRepo) ArchiveArticles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id IN ?", ids).
		Update("archived", true).Error
	return apperr.Wrap(apperr.KindPersistence, err, "archive articles")
}

// DeleteArticles is the only hard-delete path for articles.
func (r *ArticleRepo) DeleteArticles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Article{}).Error
	return apperr.Wrap(apperr.KindPersistence, err, "delete articles")
}

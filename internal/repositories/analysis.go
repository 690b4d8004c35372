package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
)

// AnalysisRepository stores analysis records. Reads and deletes only see
// records matched by the owner scope.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) (uint, error)
	FindByID(ctx context.Context, id uint, owner models.OwnerScope) (*models.Analysis, error)
	FindByIDs(ctx context.Context, ids []uint, owner models.OwnerScope) ([]models.Analysis, error)
	List(ctx context.Context, limit int, owner models.OwnerScope) ([]models.AnalysisSummary, error)
	Delete(ctx context.Context, id uint, owner models.OwnerScope) error
	Stats(ctx context.Context, owner models.OwnerScope, window time.Duration) (*models.AnalysisStats, error)
	All(ctx context.Context) ([]models.Analysis, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func ownedBy(owner models.OwnerScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.IsAny() {
			return db
		}
		if id, ok := owner.User(); ok {
			return db.Where("user_id = ?", id)
		}
		return db.Where("user_id IS NULL")
	}
}

func (r *analysisRepository) scoped(ctx context.Context, owner models.OwnerScope) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Analysis{}).Scopes(ownedBy(owner))
}

func (r *analysisRepository) Create(ctx context.Context, analysis *models.Analysis) (uint, error) {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return 0, fmt.Errorf("failed to create analysis: %w", err)
	}
	return analysis.ID, nil
}

func (r *analysisRepository) FindByID(ctx context.Context, id uint, owner models.OwnerScope) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where("id = ?", id).
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &analysis, nil
}

// FindByIDs returns the matching records in the order of ids; unknown ids are skipped.
func (r *analysisRepository) FindByIDs(ctx context.Context, ids []uint, owner models.OwnerScope) ([]models.Analysis, error) {
	if len(ids) == 0 {
		return []models.Analysis{}, nil
	}

	var found []models.Analysis
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}

	return orderByIDs(found, ids), nil
}

func (r *analysisRepository) List(ctx context.Context, limit int, owner models.OwnerScope) ([]models.AnalysisSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	return models.Summaries(analyses), nil
}

func (r *analysisRepository) Delete(ctx context.Context, id uint, owner models.OwnerScope) error {
	result := r.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where("id = ?", id).
		Delete(&models.Analysis{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete analysis: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

type typeCount struct {
	AnalysisType string
	Count        int64
}

func (r *analysisRepository) Stats(ctx context.Context, owner models.OwnerScope, window time.Duration) (*models.AnalysisStats, error) {
	stats := &models.AnalysisStats{
		ByType:     make(map[string]int64),
		WindowDays: int(window / (24 * time.Hour)),
	}

	if err := r.scoped(ctx, owner).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	var counts []typeCount
	err := r.scoped(ctx, owner).
		Select("analysis_type, COUNT(*) AS count").
		Group("analysis_type").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses by type: %w", err)
	}
	for _, c := range counts {
		stats.ByType[c.AnalysisType] = c.Count
	}

	since := time.Now().UTC().Add(-window)
	if err := r.scoped(ctx, owner).Where("created_at >= ?", since).Count(&stats.Recent).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent analyses: %w", err)
	}

	return stats, nil
}

func (r *analysisRepository) All(ctx context.Context) ([]models.Analysis, error) {
	var analyses []models.Analysis
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}
	return analyses, nil
}

func orderByIDs(found []models.Analysis, ids []uint) []models.Analysis {
	byID := make(map[uint]models.Analysis, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	ordered := make([]models.Analysis, 0, len(found))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
			delete(byID, id)
		}
	}
	return ordered
}

package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
)

// MemoryAnalysisRepository keeps analyses in process memory and is safe for concurrent use.
type MemoryAnalysisRepository struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]models.Analysis
}

func NewMemoryAnalysisRepository() *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{
		byID: make(map[uint]models.Analysis),
	}
}

func (r *MemoryAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	analysis.ID = r.nextID
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}
	r.byID[analysis.ID] = clone(*analysis)
	return analysis.ID, nil
}

func (r *MemoryAnalysisRepository) FindByID(ctx context.Context, id uint, owner models.OwnerScope) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	analysis, ok := r.byID[id]
	if !ok || !owner.Matches(analysis.UserID) {
		return nil, ErrNotFound
	}
	out := clone(analysis)
	return &out, nil
}

func (r *MemoryAnalysisRepository) FindByIDs(ctx context.Context, ids []uint, owner models.OwnerScope) ([]models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Analysis, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		analysis, ok := r.byID[id]
		if !ok || seen[id] || !owner.Matches(analysis.UserID) {
			continue
		}
		seen[id] = true
		out = append(out, clone(analysis))
	}
	return out, nil
}

func (r *MemoryAnalysisRepository) List(ctx context.Context, limit int, owner models.OwnerScope) ([]models.AnalysisSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	r.mu.RLock()
	matched := make([]models.Analysis, 0, len(r.byID))
	for _, analysis := range r.byID {
		if owner.Matches(analysis.UserID) {
			matched = append(matched, analysis)
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return models.Summaries(matched), nil
}

func (r *MemoryAnalysisRepository) Delete(ctx context.Context, id uint, owner models.OwnerScope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	analysis, ok := r.byID[id]
	if !ok || !owner.Matches(analysis.UserID) {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryAnalysisRepository) Stats(ctx context.Context, owner models.OwnerScope, window time.Duration) (*models.AnalysisStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats := &models.AnalysisStats{
		ByType:     make(map[string]int64),
		WindowDays: int(window / (24 * time.Hour)),
	}
	since := time.Now().UTC().Add(-window)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, analysis := range r.byID {
		if !owner.Matches(analysis.UserID) {
			continue
		}
		stats.Total++
		stats.ByType[analysis.AnalysisType]++
		if !analysis.CreatedAt.Before(since) {
			stats.Recent++
		}
	}
	return stats, nil
}

func (r *MemoryAnalysisRepository) All(ctx context.Context) ([]models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]models.Analysis, 0, len(r.byID))
	for _, analysis := range r.byID {
		out = append(out, clone(analysis))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the number of stored records.
func (r *MemoryAnalysisRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func clone(analysis models.Analysis) models.Analysis {
	if analysis.UserID != nil {
		uid := *analysis.UserID
		analysis.UserID = &uid
	}
	return analysis
}

func sortNewestFirst(analyses []models.Analysis) {
	sort.Slice(analyses, func(i, j int) bool {
		if !analyses[i].CreatedAt.Equal(analyses[j].CreatedAt) {
			return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
		}
		return analyses[i].ID > analyses[j].ID
	})
}
